package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths_RelativeToExecutableDir(t *testing.T) {
	p, err := ResolvePaths(PathsConfig{
		ExecutableDir: "/opt/taxipulse",
		DataDir:       "data",
		WebDir:        "web",
		LogsDir:       "logs",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/taxipulse", "data"), p.DataDir)
	assert.Equal(t, filepath.Join("/opt/taxipulse", "web"), p.WebDir)
	assert.Equal(t, filepath.Join("/opt/taxipulse", "logs"), p.LogsDir)
}

func TestResolvePaths_AbsolutePathsKept(t *testing.T) {
	p, err := ResolvePaths(PathsConfig{
		ExecutableDir: "/opt/taxipulse",
		DataDir:       "/var/lib/taxipulse",
	})
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/taxipulse", p.DataDir)
}

func TestResolvePaths_EmptyFieldsGetDefaults(t *testing.T) {
	p, err := ResolvePaths(PathsConfig{ExecutableDir: "/opt/taxipulse"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/taxipulse", "data"), p.DataDir)
	assert.Equal(t, filepath.Join("/opt/taxipulse", "logs"), p.LogsDir)
}

func TestResolvePaths_PinsExecutableDir(t *testing.T) {
	p, err := ResolvePaths(PathsConfig{})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(p.ExecutableDir))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := PathsConfig{
		DataDir: filepath.Join(base, "data"),
		LogsDir: filepath.Join(base, "logs"),
		WebDir:  filepath.Join(base, "web"),
	}

	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{p.DataDir, p.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// web/ ships with the deploy and is not auto-created.
	_, err := os.Stat(p.WebDir)
	assert.True(t, os.IsNotExist(err))
}
