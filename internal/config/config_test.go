package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsUsable(t *testing.T) {
	p := Default()
	assert.Equal(t, 1, p.Difficulty.EasyDepth)
	assert.Equal(t, 7, p.Difficulty.MaxDepth)
	assert.Equal(t, "info", p.Log.Level)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	contents := `
[difficulty]
hard_depth = 5

[root_policy]
contempt_hard_cp = 30
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, p.Difficulty.HardDepth)
	assert.Equal(t, 30, p.RootPolicy.ContemptHardCp)
	// Fields the file didn't mention keep Default's values.
	assert.Equal(t, 1, p.Difficulty.EasyDepth)
	assert.Equal(t, 60, p.RootPolicy.RepeatBanWindowCp)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.Error(t, err)
}
