package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harumami/utokyo-FSC-IS4029L1-assignment-i1/pkg/stdimg"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(mapEnv(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, stdimg.DefaultParams(), c.Params)
	assert.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(mapEnv(map[string]string{
		EnvSigmaSpace: "3",
		EnvSigmaRange: " 12.5 ",
		EnvScaling:    "4",
		EnvWorkers:    "2",
		EnvBase:       "Gaussian",
		EnvMaxSize:    "800",
		EnvDebug:      "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, stdimg.Params{SigmaSpace: 3, SigmaRange: 12.5, Scaling: 4}, c.Params)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, BaseGaussian, c.Base)
	assert.Equal(t, 800, c.MaxSize)
	assert.True(t, c.Debug)
	assert.Equal(t, stdimg.Gaussian{Sigma: 3}, c.Smoother())
}

func TestFromEnvErrorsNameVariable(t *testing.T) {
	for _, key := range []string{EnvSigmaSpace, EnvWorkers, EnvBase} {
		_, err := FromEnv(mapEnv(map[string]string{key: "nope"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), key)
	}
}

func TestPreviewDebugEnablesDebug(t *testing.T) {
	c, err := FromEnv(mapEnv(map[string]string{"PREVIEW_DEBUG": "1"}))
	require.NoError(t, err)
	assert.True(t, c.Debug)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Workers = -1
	assert.ErrorIs(t, c.Validate(), stdimg.ErrInvalidParam)

	c = Default()
	c.Params.Scaling = 20
	assert.ErrorIs(t, c.Validate(), stdimg.ErrInvalidParam)

	c = Default()
	c.Base = "median"
	assert.Error(t, c.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# tuned\nDETAIL_SCALING=6\nexport DETAIL_BASE=\"gaussian\"\n"), 0o644))
	t.Setenv(EnvScaling, "")
	os.Unsetenv(EnvScaling)
	t.Setenv(EnvBase, "")
	os.Unsetenv(EnvBase)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6.0, c.Params.Scaling)
	assert.Equal(t, BaseGaussian, c.Base)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
}

func TestLoadKeepsExistingEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DETAIL_SIGMA_SPACE=9\n"), 0o644))
	t.Setenv(EnvSigmaSpace, "2")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.Params.SigmaSpace)
}
