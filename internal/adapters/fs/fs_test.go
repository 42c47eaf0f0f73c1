package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

// touch creates path (if needed) and sets its modification time.
func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestOracle_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")
	touch(t, src, time.Now())

	stale, err := fs.NewOracle().NeedsRebuild(filepath.Join(dir, "main"), src)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestOracle_MissingOutputDoesNotStatInputs(t *testing.T) {
	dir := t.TempDir()

	stale, err := fs.NewOracle().NeedsRebuild(filepath.Join(dir, "main"), filepath.Join(dir, "gone.c"))
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestOracle_NewerInput(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	out := filepath.Join(dir, "main")
	src := filepath.Join(dir, "main.c")
	hdr := filepath.Join(dir, "main.h")
	touch(t, out, base)
	touch(t, src, base.Add(-time.Minute))
	touch(t, hdr, base.Add(time.Minute))

	stale, err := fs.NewOracle().NeedsRebuild(out, src, hdr)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestOracle_UpToDate(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	out := filepath.Join(dir, "main")
	src := filepath.Join(dir, "main.c")
	touch(t, src, base)
	touch(t, out, base.Add(time.Minute))

	stale, err := fs.NewOracle().NeedsRebuild(out, src)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestOracle_SecondGranularity(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	out := filepath.Join(dir, "main")
	src := filepath.Join(dir, "main.c")
	touch(t, out, base.Add(100*time.Millisecond))
	// Newer by sub-second only: same second, not stale.
	touch(t, src, base.Add(900*time.Millisecond))

	stale, err := fs.NewOracle().NeedsRebuild(out, src)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestOracle_NoInputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "main")
	touch(t, out, time.Now())

	stale, err := fs.NewOracle().NeedsRebuild(out)
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestOracle_VanishedInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "main")
	touch(t, out, time.Now())

	_, err := fs.NewOracle().NeedsRebuild(out, filepath.Join(dir, "gone.c"))
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrStaleCheck)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemover_Remove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libfoo.a")
	touch(t, path, time.Now())

	removed, err := fs.NewRemover().Remove(path)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, path)

	removed, err = fs.NewRemover().Remove(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemover_Remove_Failure(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory cannot be removed with os.Remove.
	target := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(target, 0o750))
	touch(t, filepath.Join(target, "child"), time.Now())

	_, err := fs.NewRemover().Remove(target)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemove)
}
