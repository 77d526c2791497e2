package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sentineldb/sentineldb/internal/logger"
	"github.com/sentineldb/sentineldb/internal/sentinel"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *sentinel.Engine {
	t.Helper()
	e, err := sentinel.NewEngine(logger.NewFromConfig("error", "text"))
	require.NoError(t, err)
	return e
}

func TestLoadGuards_MissingPathIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, LoadGuards("", e, logger.NewFromConfig("error", "text")))
	require.Empty(t, e.ListGuards())
}

func TestLoadGuards_NonexistentFileIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	err := LoadGuards(filepath.Join(t.TempDir(), "nope.yaml"), e, logger.NewFromConfig("error", "text"))
	require.NoError(t, err)
	require.Empty(t, e.ListGuards())
}

func TestLoadGuards_AllVariants(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guards.yaml")
	content := `
guards:
  - name: scoreG
    pattern: "score*"
    type: range_int
    min: 0
    max: 100
  - name: statusG
    pattern: "status*"
    type: enum
    allowed: ["active", "inactive", "pending"]
  - name: nameG
    pattern: "name*"
    type: length
    min_len: 3
    max_len: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	e := newTestEngine(t)
	require.NoError(t, LoadGuards(path, e, logger.NewFromConfig("error", "text")))

	guards := e.ListGuards()
	require.Len(t, guards, 3)
	require.Equal(t, "scoreG", guards[0].Name)
	require.Equal(t, sentinel.GuardRangeInt, guards[0].Kind)
	require.Equal(t, "statusG", guards[1].Name)
	require.Equal(t, sentinel.GuardEnum, guards[1].Kind)
	require.Equal(t, "nameG", guards[2].Name)
	require.Equal(t, sentinel.GuardLength, guards[2].Kind)
}

func TestLoadGuards_UnknownTypeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guards:\n  - name: bad\n    pattern: \"*\"\n    type: bogus\n"), 0o644))

	e := newTestEngine(t)
	err := LoadGuards(path, e, logger.NewFromConfig("error", "text"))
	require.Error(t, err)
}

func TestLoadGuards_EnumWithoutAllowedErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guards:\n  - name: bad\n    pattern: \"*\"\n    type: enum\n"), 0o644))

	e := newTestEngine(t)
	err := LoadGuards(path, e, logger.NewFromConfig("error", "text"))
	require.Error(t, err)
}

func TestLoadGuards_MalformedYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guards: [this is not valid: yaml: at all"), 0o644))

	e := newTestEngine(t)
	err := LoadGuards(path, e, logger.NewFromConfig("error", "text"))
	require.Error(t, err)
}
