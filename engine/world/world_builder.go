package world

import (
	"time"
)

// WorldBuilderOption is a functional option for configuring a World.
// Use the With* functions to create options.
type WorldBuilderOption func(w *world)

// WithClock replaces the wall clock used for the empty-world quit grace and message expiry.
//
// Parameters:
//   - clock: returns the current time
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithClock(clock func() time.Time) WorldBuilderOption {
	return func(w *world) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// WithQuitGrace sets how long an empty world waits after requesting closure before it
// forces closure. Defaults to 5 seconds.
//
// Parameters:
//   - grace: the delay between the soft and the forced quit
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithQuitGrace(grace time.Duration) WorldBuilderOption {
	return func(w *world) {
		w.quitGrace = max(grace, 0)
	}
}

// WithFileLoader sets the importer factory used by LoadFile changes. Without one,
// LoadFile is logged and skipped.
//
// Parameters:
//   - loader: creates an importer for a path
//
// Returns:
//   - WorldBuilderOption: option function to apply
func WithFileLoader(loader FileLoader) WorldBuilderOption {
	return func(w *world) {
		w.fileLoader = loader
	}
}

// WithChanges queues changes that are applied on the first Update.
func WithChanges(changes ...WorldChange) WorldBuilderOption {
	return func(w *world) {
		w.queue = append(w.queue, changes...)
	}
}
