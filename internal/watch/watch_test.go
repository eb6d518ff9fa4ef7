package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, files []string, debounce time.Duration, reload ReloadFunc) {
	t.Helper()
	w, err := New(files, reload)
	require.NoError(t, err)
	w.debounce = debounce

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cad.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, 20*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte(`{"fields":[]}`), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestReloadOnReplaceByRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neos.csv")
	require.NoError(t, os.WriteFile(path, []byte("pdes\n"), 0o644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, 20*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})

	tmp := filepath.Join(dir, "neos.csv.part")
	require.NoError(t, os.WriteFile(tmp, []byte("pdes\n433\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestBurstIsDebounced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cad.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, 200*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})

	for i := range 5 {
		require.NoError(t, os.WriteFile(path, []byte{byte('0' + i)}, 0o644))
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cad.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, 20*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestReloadErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cad.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var calls atomic.Int32
	startWatcher(t, []string{path}, 20*time.Millisecond, func() error {
		calls.Add(1)
		return errors.New("malformed")
	})

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestReloadsNeverOverlap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cad.json")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	var running, maxRunning, started atomic.Int32
	var last atomic.Value
	startWatcher(t, []string{path}, 20*time.Millisecond, func() error {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		started.Add(1)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		time.Sleep(300 * time.Millisecond)
		last.Store(string(data))
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))
	require.Eventually(t, func() bool { return started.Load() >= 1 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("2"), 0o644))

	assert.Eventually(t, func() bool {
		return running.Load() == 0 && last.Load() == "2"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), maxRunning.Load())
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent", "cad.json")}, func() error { return nil })
	assert.Error(t, err)
}
