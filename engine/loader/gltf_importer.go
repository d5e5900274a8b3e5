package loader

import (
	"fmt"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
	"github.com/charmbracelet/log"
)

// importResult is the single value an import worker produces.
type importResult struct {
	changes []world.WorldChange
	err     error
}

// gltfImporter runs one glTF import on the loader's worker pool and hands the
// result to the world through a channel holding at most one value.
type gltfImporter struct {
	mu       *sync.Mutex
	name     string
	labels   []string
	parse    func() (*gltfFile, error)
	submit   func(task func())
	result   chan importResult
	started  bool
	finished bool
	log      *log.Logger
}

var _ world.Importer = &gltfImporter{}

func newGLTFImporter(name string, labels []string, parse func() (*gltfFile, error), submit func(task func()), logger *log.Logger) *gltfImporter {
	return &gltfImporter{
		mu:     &sync.Mutex{},
		name:   name,
		labels: labels,
		parse:  parse,
		submit: submit,
		result: make(chan importResult, 1),
		log:    logger.With("asset", name),
	}
}

func (imp *gltfImporter) BeginProcessing() {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if imp.started {
		imp.log.Warn("import already in progress, ignoring BeginProcessing")
		return
	}
	imp.started = true
	imp.log.Debug("import queued")
	imp.submit(imp.run)
}

func (imp *gltfImporter) run() {
	var res importResult
	defer func() {
		if r := recover(); r != nil {
			res = importResult{err: fmt.Errorf("%w: importing %s panicked: %v", common.ErrGltfParse, imp.name, r)}
		}
		imp.result <- res
		close(imp.result)
	}()

	f, err := imp.parse()
	if err != nil {
		res.err = fmt.Errorf("importing %s: %w", imp.name, err)
		return
	}
	changes, err := buildChanges(f, imp.labels, imp.log)
	if err != nil {
		res.err = fmt.Errorf("importing %s: %w", imp.name, err)
		return
	}
	res.changes = changes
	imp.log.Debug("import finished", "changes", len(changes))
}

func (imp *gltfImporter) IsDoneProcessing() bool {
	return len(imp.result) > 0
}

func (imp *gltfImporter) FinishProcessing() ([]world.WorldChange, error) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if !imp.started {
		return nil, common.ErrLoaderNotDone
	}
	if imp.finished {
		return nil, common.ErrLoaderChannelClosed
	}

	select {
	case res, ok := <-imp.result:
		if !ok {
			return nil, common.ErrLoaderChannelClosed
		}
		imp.finished = true
		return res.changes, res.err
	default:
		return nil, common.ErrLoaderNotDone
	}
}
