package storage

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottery-system/backend/internal/infrastructure/config"
)

func testConfig(dataDir string) config.StorageConfig {
	return config.StorageConfig{
		DataDir:  dataDir,
		AppDir:   "lottery-system",
		FileName: "data.json",
	}
}

func TestResolvePathCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	fs := afero.NewOsFs()

	st, err := ResolvePath(fs, testConfig(root))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "lottery-system"), st.Dir)
	assert.Equal(t, filepath.Join(root, "lottery-system", "data.json"), st.Path)

	ok, err := afero.DirExists(fs, st.Dir)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, st.HealthCheck())
}

func TestResolvePathIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()

	first, err := ResolvePath(fs, testConfig("/data"))
	require.NoError(t, err)
	second, err := ResolvePath(fs, testConfig("/data"))
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
}

func TestResolvePathFailsWhenDirectoryCannotBeCreated(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := ResolvePath(fs, testConfig("/data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create data directory")
}

func TestDataRootDefaultsToPlatformDir(t *testing.T) {
	root, err := DataRoot(testConfig(""))
	require.NoError(t, err)
	assert.NotEmpty(t, root)
}

func TestHealthCheckAndInfo(t *testing.T) {
	fs := afero.NewMemMapFs()
	st, err := ResolvePath(fs, testConfig("/data"))
	require.NoError(t, err)

	assert.Equal(t, false, st.GetInfo()["exists"])

	require.NoError(t, afero.WriteFile(fs, st.Path, []byte(`{"groups":null}`), 0o644))
	info := st.GetInfo()
	assert.Equal(t, true, info["exists"])
	assert.Equal(t, int64(15), info["size_bytes"])

	require.NoError(t, fs.RemoveAll(st.Dir))
	require.Error(t, st.HealthCheck())
}
