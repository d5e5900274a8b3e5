package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a PreProcessor registry in sync with a shader folder on disk.
// Created and written .wgsl files are re-registered, removed files are unregistered,
// and onChange is called with the affected import name.
type Watcher struct {
	root     string
	pp       PreProcessor
	onChange func(name string)

	fsWatch *fsnotify.Watcher
	done    chan struct{}
	wg      *sync.WaitGroup
	closed  bool
	mu      *sync.Mutex
}

// NewWatcher registers every shader below root and starts watching it recursively.
//
// Parameters:
//   - root: the shader folder
//   - pp: the registry to keep current
//   - onChange: called from the watcher goroutine after a fragment changed, may be nil
//
// Returns:
//   - *Watcher: the running watcher, stop it with Close
//   - error: if the initial registration or watch setup failed
func NewWatcher(root string, pp PreProcessor, onChange func(name string)) (*Watcher, error) {
	if err := pp.RegisterFolder(root); err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		pp:       pp,
		onChange: onChange,
		fsWatch:  fsWatch,
		done:     make(chan struct{}),
		wg:       &sync.WaitGroup{},
		mu:       &sync.Mutex{},
	}

	if err := w.watchRecursive(root); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher goroutine. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsWatch.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsWatch.Events:
			if !ok {
				return
			}
			w.handle(e)
		case err, ok := <-w.fsWatch.Errors:
			if !ok {
				return
			}
			logger.Errorf("shader watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := w.watchRecursive(e.Name); err != nil {
				logger.Warnf("shader watcher: %v", err)
			}
		}
		return
	}
	if filepath.Ext(e.Name) != shaderExtension {
		return
	}

	rel, err := filepath.Rel(w.root, e.Name)
	if err != nil {
		logger.Warnf("shader watcher: %v", err)
		return
	}
	name := ImportName(filepath.ToSlash(rel))

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, err := os.ReadFile(e.Name)
		if err != nil {
			// editors often replace files, the follow-up Create will pick it up
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warnf("shader watcher: reading %s: %v", e.Name, err)
			}
			return
		}
		if !utf8.Valid(data) {
			logger.Warnf("shader watcher: %s is not valid UTF-8", e.Name)
			return
		}
		w.pp.Register(name, string(data))
		logger.Debugf("shader %q reloaded", name)
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.pp.Unregister(name)
		logger.Debugf("shader %q removed", name)
	default:
		return
	}

	if w.onChange != nil {
		w.onChange(name)
	}
}

// watchRecursive adds root and every directory below it to the watch list.
func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsWatch.Add(p); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
		}
		return nil
	})
}
