// Package loader imports glTF 2.0 assets (.gltf and .glb) into world changes.
// Parsing, mesh conversion and image decoding run on a worker pool; the world
// polls the returned importers and spawns the models, cameras and lights.
package loader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 16
	workerIdle       = time.Second
)

type loader struct {
	mu        *sync.Mutex
	workers   int
	queueSize int
	pool      worker.DynamicWorkerPool
	nextTask  int
	closed    bool
	log       *log.Logger
}

// Loader creates glTF importers that share one worker pool.
type Loader interface {
	// Import creates an importer for a file on disk. External buffers and images are
	// resolved relative to the file.
	//
	// Parameters:
	//   - path: a .gltf or .glb file
	//   - labels: when given, only nodes with these labels are spawned
	//
	// Returns:
	//   - world.Importer: the importer; work starts on BeginProcessing
	Import(path string, labels ...string) world.Importer

	// ImportBytes creates an importer for an in-memory asset. Relative URIs are
	// resolved against the working directory.
	//
	// Parameters:
	//   - name: the asset name used in logs and errors
	//   - data: glTF JSON or a GLB container
	//   - labels: when given, only nodes with these labels are spawned
	//
	// Returns:
	//   - world.Importer: the importer; work starts on BeginProcessing
	ImportBytes(name string, data []byte, labels ...string) world.Importer

	// FileLoader adapts Import for world.WithFileLoader.
	FileLoader() world.FileLoader

	// Close stops the worker pool. Importers started afterwards run on the calling goroutine.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a loader with its own worker pool.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions
//
// Returns:
//   - Loader: the loader, to be closed when the world is closed
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        &sync.Mutex{},
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
		log:       logger.With("component", "loader"),
	}
	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, workerIdle)
	return l
}

func (l *loader) Import(path string, labels ...string) world.Importer {
	parse := func() (*gltfFile, error) {
		return parseGLTFFile(path)
	}
	return newGLTFImporter(filepath.Base(path), labels, parse, l.submit, l.log)
}

func (l *loader) ImportBytes(name string, data []byte, labels ...string) world.Importer {
	parse := func() (*gltfFile, error) {
		return parseGLTFBytes(data, ".")
	}
	return newGLTFImporter(name, labels, parse, l.submit, l.log)
}

func (l *loader) FileLoader() world.FileLoader {
	return func(path string, labels []string) world.Importer {
		return l.Import(path, labels...)
	}
}

func (l *loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.pool.Stop()
}

// submit runs task on the pool, or inline once the loader is closed.
func (l *loader) submit(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.log.Warn("loader is closed, running import inline")
		task()
		return
	}
	id := l.nextTask
	l.nextTask++
	l.mu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			task()
			return nil, nil
		},
	})
}
