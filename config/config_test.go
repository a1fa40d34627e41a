package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certcat/certext/logging"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "certext.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
log:
  level: 7
  textFormat: true
names: /etc/certext/names.yaml
backend: stdlib
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Log:     logging.Config{Level: 7, TextFormat: true},
		Names:   "/etc/certext/names.yaml",
		Backend: "stdlib",
	}, c)
}

func TestLoadEmpty(t *testing.T) {
	c, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, &Config{Log: logging.Config{Level: logging.DefaultLevel}}, c)
}

func TestLoadKeepsDefaultLevel(t *testing.T) {
	c, err := Load(writeFile(t, "log:\n  textFormat: true\nbackend: der\n"))
	require.NoError(t, err)
	assert.Equal(t, logging.Config{Level: logging.DefaultLevel, TextFormat: true}, c.Log)

	c, err = Load(writeFile(t, "log:\n  level: -1\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, c.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "backend: der\nbakend: stdlib\n"))
	assert.ErrorContains(t, err, "bakend")

	_, err = Load(writeFile(t, "log:\n  level: loud\n"))
	assert.ErrorContains(t, err, "parsing config")
}
