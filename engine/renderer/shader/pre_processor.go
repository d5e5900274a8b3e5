// pre_processor.go implements the WGSL include preprocessor. A line of the form
//
//	#import <NAME>
//
// is replaced by the registered source of NAME, expanded recursively. Every NAME is
// expanded at most once per Parse call, in order of first occurrence; a repeated or
// cyclic import expands to nothing.
package shader

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/SakulFlee/Orbital-sub000/common"
)

const (
	importPrefix    = "#import <"
	importSuffix    = ">"
	shaderExtension = ".wgsl"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	mu       *sync.RWMutex
	registry map[string]string
	strict   bool
}

// PreProcessor resolves #import directives against a registry of named WGSL fragments.
// It is safe for concurrent use; registration may happen while other goroutines parse.
type PreProcessor interface {
	// Register adds or replaces a named fragment.
	//
	// Parameters:
	//   - name: the import name, e.g. "pbr/brdf"
	//   - source: the verbatim fragment text, which may itself contain imports
	Register(name, source string)

	// Unregister removes a named fragment if present.
	//
	// Parameters:
	//   - name: the import name to remove
	Unregister(name string)

	// RegisterFolder walks root for *.wgsl files and registers each under its
	// root-relative path with the extension stripped and separators normalized to "/".
	//
	// Parameters:
	//   - root: the folder to walk
	//
	// Returns:
	//   - error: wraps common.ErrShaderIo or common.ErrShaderNonUTF8
	RegisterFolder(root string) error

	// RegisterFS is RegisterFolder over an fs.FS, used for embedded shader libraries.
	//
	// Parameters:
	//   - fsys: the file system to walk
	//   - root: the folder inside fsys, "." for the whole file system
	//
	// Returns:
	//   - error: wraps common.ErrShaderIo or common.ErrShaderNonUTF8
	RegisterFS(fsys fs.FS, root string) error

	// Parse expands every import in source.
	//
	// Parameters:
	//   - source: WGSL text containing zero or more #import lines
	//
	// Returns:
	//   - string: the expanded source, lines joined with "\n"
	//   - error: wraps common.ErrShaderUnknownDirective for unregistered names, or
	//     common.ErrShaderCycle for cyclic imports when strict mode is enabled
	Parse(source string) (string, error)

	// Names lists every registered fragment name in sorted order.
	//
	// Returns:
	//   - []string: the registered names
	Names() []string
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption configures a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithStrictCycles makes Parse fail with common.ErrShaderCycle when an import refers
// to a fragment that is still being expanded, instead of silently eliding it.
func WithStrictCycles() PreProcessorOption {
	return func(p *preProcessor) {
		p.strict = true
	}
}

// WithFragment pre-registers a fragment.
func WithFragment(name, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.registry[name] = source
	}
}

// NewPreProcessor creates an empty PreProcessor.
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		mu:       &sync.RWMutex{},
		registry: make(map[string]string),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registry[name] = source
}

func (p *preProcessor) Unregister(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.registry, name)
}

func (p *preProcessor) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.registry))
	for name := range p.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *preProcessor) RegisterFolder(root string) error {
	return filepath.WalkDir(root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walking %s: %v", common.ErrShaderIo, filePath, err)
		}
		if d.IsDir() || filepath.Ext(filePath) != shaderExtension {
			return nil
		}
		rel, err := filepath.Rel(root, filePath)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrShaderIo, err)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", common.ErrShaderIo, filePath, err)
		}
		return p.registerFile(filepath.ToSlash(rel), data)
	})
}

func (p *preProcessor) RegisterFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walking %s: %v", common.ErrShaderIo, filePath, err)
		}
		if d.IsDir() || path.Ext(filePath) != shaderExtension {
			return nil
		}
		rel := strings.TrimPrefix(filePath, strings.TrimSuffix(root, "/")+"/")
		if root == "." {
			rel = filePath
		}
		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", common.ErrShaderIo, filePath, err)
		}
		return p.registerFile(rel, data)
	})
}

// registerFile registers data under the slash-separated relative path minus its extension.
func (p *preProcessor) registerFile(rel string, data []byte) error {
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: %s", common.ErrShaderNonUTF8, rel)
	}
	p.Register(ImportName(rel), string(data))
	return nil
}

// ImportName converts a slash- or backslash-separated relative file path into the name
// used by #import directives.
func ImportName(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	return strings.TrimSuffix(rel, shaderExtension)
}

func (p *preProcessor) Parse(source string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	visited := make(map[string]struct{})
	expanding := make(map[string]struct{})
	return p.expand(source, visited, expanding)
}

// expand replaces directives in source. visited is shared by the whole top-level parse;
// expanding holds the names on the current recursion path.
func (p *preProcessor) expand(source string, visited, expanding map[string]struct{}) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		name, ok := parseImport(line)
		if !ok {
			out = append(out, line)
			continue
		}

		if _, seen := visited[name]; seen {
			if _, onPath := expanding[name]; onPath && p.strict {
				return "", fmt.Errorf("%w: line %d imports %q while it is being expanded", common.ErrShaderCycle, i+1, name)
			}
			continue
		}

		fragment, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("%w: line %d: %q", common.ErrShaderUnknownDirective, i+1, name)
		}
		visited[name] = struct{}{}

		expanding[name] = struct{}{}
		expanded, err := p.expand(fragment, visited, expanding)
		delete(expanding, name)
		if err != nil {
			return "", fmt.Errorf("in %q: %w", name, err)
		}

		if expanded != "" {
			out = append(out, expanded)
		}
	}

	return strings.Join(out, "\n"), nil
}

// parseImport recognizes a directive line and returns its NAME.
func parseImport(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, importPrefix) || !strings.HasSuffix(trimmed, importSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(trimmed, importPrefix), importSuffix)
	if name == "" || strings.ContainsAny(name, "<> \t") {
		return "", false
	}
	return name, true
}
