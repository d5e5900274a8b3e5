package shader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsChangedShaders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "color.wgsl"), []byte("RED"), 0o644))

	var mu sync.Mutex
	var changed []string

	pp := NewPreProcessor()
	w, err := NewWatcher(root, pp, func(name string) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, name)
	})
	require.NoError(t, err)
	defer w.Close()

	out, err := pp.Parse("#import <color>")
	require.NoError(t, err)
	assert.Equal(t, "RED", out)

	require.NoError(t, os.WriteFile(filepath.Join(root, "color.wgsl"), []byte("BLUE"), 0o644))

	require.Eventually(t, func() bool {
		out, err := pp.Parse("#import <color>")
		return err == nil && out == "BLUE"
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Contains(t, changed, "color")
	mu.Unlock()

	require.NoError(t, os.Remove(filepath.Join(root, "color.wgsl")))
	require.Eventually(t, func() bool {
		_, err := pp.Parse("#import <color>")
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), NewPreProcessor(), nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
