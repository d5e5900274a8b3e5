package shader

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainRegistry() PreProcessor {
	return NewPreProcessor(
		WithFragment("a", "A"),
		WithFragment("b", "#import <a>\nB"),
		WithFragment("c", "#import <b>\n#import <a>\nC"),
	)
}

func TestParseNestedImportsOrderedByFirstOccurrence(t *testing.T) {
	out, err := chainRegistry().Parse("#import <c>")
	require.NoError(t, err)
	assert.Equal(t, "A\nB\nC", out)
}

func TestParseDuplicateImportExpandsOnce(t *testing.T) {
	out, err := chainRegistry().Parse("#import <a>\n#import <a>\nmain")
	require.NoError(t, err)
	assert.Equal(t, "A\nmain", out)
}

func TestParseIsIdempotent(t *testing.T) {
	pp := chainRegistry()
	first, err := pp.Parse("#import <c>\nfn main() {}")
	require.NoError(t, err)

	second, err := pp.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseSelfImportTerminatesEmpty(t *testing.T) {
	pp := NewPreProcessor(WithFragment("self", "#import <self>"))
	out, err := pp.Parse("#import <self>")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestParseCycleWithoutNewContent(t *testing.T) {
	pp := NewPreProcessor(
		WithFragment("x", "#import <y>\nX"),
		WithFragment("y", "#import <x>\nY"),
	)
	out, err := pp.Parse("#import <x>")
	require.NoError(t, err)
	assert.Equal(t, "Y\nX", out)
}

func TestParseStrictCycle(t *testing.T) {
	pp := NewPreProcessor(
		WithStrictCycles(),
		WithFragment("x", "#import <y>"),
		WithFragment("y", "#import <x>"),
	)
	_, err := pp.Parse("#import <x>")
	assert.ErrorIs(t, err, common.ErrShaderCycle)

	// a plain duplicate is not a cycle
	pp = NewPreProcessor(WithStrictCycles(), WithFragment("a", "A"))
	out, err := pp.Parse("#import <a>\n#import <a>")
	require.NoError(t, err)
	assert.Equal(t, "A", out)
}

func TestParseUnknownImport(t *testing.T) {
	_, err := chainRegistry().Parse("#import <missing>")
	assert.ErrorIs(t, err, common.ErrShaderUnknownDirective)

	pp := NewPreProcessor(WithFragment("outer", "#import <nope>"))
	_, err = pp.Parse("#import <outer>")
	assert.ErrorIs(t, err, common.ErrShaderUnknownDirective)
}

func TestParseIgnoresNonDirectiveLines(t *testing.T) {
	src := "// #import <a> in a comment\n  #import <a>  \n#import a\n#IMPORT <a>"
	out, err := chainRegistry().Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "// #import <a> in a comment\nA\n#import a\n#IMPORT <a>", out)
}

func TestRegisterFolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pbr"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "camera.wgsl"), []byte("struct Camera {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pbr", "brdf.wgsl"), []byte("#import <camera>\nfn brdf() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))

	pp := NewPreProcessor()
	require.NoError(t, pp.RegisterFolder(root))
	assert.Equal(t, []string{"camera", "pbr/brdf"}, pp.Names())

	out, err := pp.Parse("#import <pbr/brdf>")
	require.NoError(t, err)
	assert.Equal(t, "struct Camera {}\nfn brdf() {}", out)
}

func TestRegisterFolderNonUTF8(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.wgsl"), []byte{0xff, 0xfe, 0xfd}, 0o644))

	err := NewPreProcessor().RegisterFolder(root)
	assert.ErrorIs(t, err, common.ErrShaderNonUTF8)
}

func TestRegisterFolderMissing(t *testing.T) {
	err := NewPreProcessor().RegisterFolder(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrShaderIo)
}

func TestRegisterFS(t *testing.T) {
	fsys := fstest.MapFS{
		"shaders/math.wgsl":     {Data: []byte("const PI = 3.14;")},
		"shaders/ibl/cube.wgsl": {Data: []byte("#import <math>")},
		"shaders/readme.md":     {Data: []byte("-")},
		"other/unrelated.wgsl":  {Data: []byte("x")},
	}

	pp := NewPreProcessor()
	require.NoError(t, pp.RegisterFS(fsys, "shaders"))
	assert.Equal(t, []string{"ibl/cube", "math"}, pp.Names())

	pp = NewPreProcessor()
	require.NoError(t, pp.RegisterFS(fsys, "."))
	assert.Contains(t, pp.Names(), "other/unrelated")
	assert.Contains(t, pp.Names(), "shaders/math")
}

func TestImportName(t *testing.T) {
	assert.Equal(t, "pbr/brdf", ImportName("pbr\\brdf.wgsl"))
	assert.Equal(t, "camera", ImportName("camera.wgsl"))
}

func TestUnregister(t *testing.T) {
	pp := chainRegistry()
	pp.Unregister("a")
	_, err := pp.Parse("#import <b>")
	assert.ErrorIs(t, err, common.ErrShaderUnknownDirective)
}
