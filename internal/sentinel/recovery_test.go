package sentinel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecover_SnapshotThenWALReplay(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")
	snapPath := SnapshotPath(walPath)

	require.NoError(t, WriteSnapshot(snapPath, SafeDefault, map[Key]Value{
		"a": "from-snapshot",
		"b": "from-snapshot",
	}))

	walContent := "SET b fresh 2000\nSET c new 3000\nDEL a\n"
	require.NoError(t, os.WriteFile(walPath, []byte(walContent), 0o644))

	e, err := NewEngine(newTestLogger(), WithWAL(walPath))
	require.NoError(t, err)

	_, ok := e.Get("a")
	require.False(t, ok, "a should have been deleted during WAL replay")

	v, ok := e.Get("b")
	require.True(t, ok)
	require.Equal(t, Value("fresh"), v)

	v, ok = e.Get("c")
	require.True(t, ok)
	require.Equal(t, Value("new"), v)

	require.True(t, e.wal.Enabled(), "WAL must be re-enabled after recovery")
}

func TestRecover_PolicyReplay_WALOverridesSnapshot(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")
	snapPath := SnapshotPath(walPath)

	require.NoError(t, WriteSnapshot(snapPath, SafeDefault, map[Key]Value{"k": "v"}))
	require.NoError(t, os.WriteFile(walPath, []byte("POLICY SET STRICT\n"), 0o644))

	e, err := NewEngine(newTestLogger(), WithWAL(walPath))
	require.NoError(t, err)
	require.Equal(t, Strict, e.GetDecisionPolicy())
}

func TestRecover_PolicyLastWins(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")

	content := "POLICY SET STRICT\nSET a 1 1000\nPOLICY SET DEV_FRIENDLY\n"
	require.NoError(t, os.WriteFile(walPath, []byte(content), 0o644))

	e, err := NewEngine(newTestLogger(), WithWAL(walPath))
	require.NoError(t, err)
	require.Equal(t, DevFriendly, e.GetDecisionPolicy())
}

func TestRecover_OldFormatSetLineFallsBackToNow(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")
	require.NoError(t, os.WriteFile(walPath, []byte("SET legacy oldvalue\n"), 0o644))

	fixedNow := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e, err := NewEngine(newTestLogger(), WithWAL(walPath), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	v, ok := e.Get("legacy")
	require.True(t, ok)
	require.Equal(t, Value("oldvalue"), v)

	history := e.History("legacy")
	require.Len(t, history, 1)
	require.True(t, history[0].Timestamp.Equal(fixedNow))
}

func TestRecover_MalformedLinesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")
	content := "SET good value1 1000\nGARBAGE LINE HERE\nSET \nDEL\n"
	require.NoError(t, os.WriteFile(walPath, []byte(content), 0o644))

	e, err := NewEngine(newTestLogger(), WithWAL(walPath))
	require.NoError(t, err)

	v, ok := e.Get("good")
	require.True(t, ok)
	require.Equal(t, Value("value1"), v)
}

func TestRecover_NoFilesYieldsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	walPath := filepath.Join(dir, "wal.log")

	e, err := NewEngine(newTestLogger(), WithWAL(walPath))
	require.NoError(t, err)
	require.Equal(t, 0, e.store.Size())
}
