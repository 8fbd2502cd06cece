package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(write(t, `
store:
  backend: memory
hierarchy:
  code: menu
  levels: 3
log:
  level: debug
`))
	require.NoError(t, err)
	require.Equal(t, BackendMemory, c.Store.Backend)
	require.Equal(t, "data", c.Store.Path)
	require.Equal(t, "menu", c.Hierarchy.Code)
	require.Equal(t, 3, c.Hierarchy.Levels)
	require.Equal(t, 10, c.Hierarchy.SectionSize)
	require.Equal(t, "debug", c.Log.Level)
}

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, New(), c)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(write(t, "store: [\n"))
	require.Error(t, err)

	_, err = Load(write(t, "store:\n  backend: bolt\n"))
	require.ErrorContains(t, err, "bolt")

	_, err = Load(write(t, "hierarchy:\n  code: \"\"\n"))
	require.ErrorContains(t, err, "code")
}
