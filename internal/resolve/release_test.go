package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIndex(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.pub")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadIndex_SortsDescending(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, `
[[releases]]
version = "1.0.0"
revision = "rev1"

[[releases]]
version = "1.2.0"
revision = "rev2"

[[releases]]
version = "1.1.0"
revision = "rev3"
`)

	idx, err := LoadIndex(path)
	require.NoError(t, err)
	require.Len(t, idx.releases, 3)
	assert.Equal(t, "1.2.0", idx.releases[0].Version.String())
	assert.Equal(t, "1.1.0", idx.releases[1].Version.String())
	assert.Equal(t, "1.0.0", idx.releases[2].Version.String())
}

func TestIndex_Select(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, `
[[releases]]
version = "1.0.0"
revision = "rev1"

[[releases]]
version = "2.0.0"
revision = "rev2"
`)

	idx, err := LoadIndex(path)
	require.NoError(t, err)

	req, err := semver.NewConstraint("^1.0.0")
	require.NoError(t, err)

	release, ok := idx.Select(req)
	require.True(t, ok)
	assert.Equal(t, "1.0.0", release.Version.String())
	assert.Equal(t, "rev1", release.Revision)

	req2, err := semver.NewConstraint("^3.0.0")
	require.NoError(t, err)
	_, ok = idx.Select(req2)
	assert.False(t, ok)
}

func TestLoadIndex_InvalidVersion(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, `
[[releases]]
version = "not-a-version"
revision = "rev1"
`)

	_, err := LoadIndex(path)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestLoadIndex_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadIndex(filepath.Join(t.TempDir(), "missing.pub"))
	require.Error(t, err)
}
