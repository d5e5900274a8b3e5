package loader

import "github.com/SakulFlee/Orbital-sub000/engine/config"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithConfig applies the [loader] section of the configuration file.
//
// Parameters:
//   - cfg: the loader configuration
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker and queue sizes
func WithConfig(cfg config.LoaderConfig) LoaderBuilderOption {
	return func(l *loader) {
		WithWorkers(cfg.Workers)(l)
		WithQueueSize(cfg.QueueSize)(l)
	}
}

// WithWorkers sets the number of concurrent imports. Values below one are ignored.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithQueueSize sets how many imports may wait for a free worker. Values below one are ignored.
func WithQueueSize(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.queueSize = n
		}
	}
}
