package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGit is an in-memory Repo double: Clone materializes a directory on
// disk (so downstream manifest.Load can read it) without touching a real
// git binary; Fetch and Checkout only record their calls.
type fakeGit struct {
	clones    []string
	fetches   []string
	checkouts []string
	// files maps url -> relative path -> contents, written into the clone
	// directory on Clone.
	files map[string]map[string]string
}

func newFakeGit() *fakeGit {
	return &fakeGit{files: make(map[string]map[string]string)}
}

func (g *fakeGit) Clone(url, dir string) error {
	g.clones = append(g.clones, url)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, contents := range g.files[url] {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (g *fakeGit) Fetch(dir string) error {
	g.fetches = append(g.fetches, dir)
	return nil
}

func (g *fakeGit) Checkout(dir, revision string) error {
	g.checkouts = append(g.checkouts, revision)
	return nil
}

func TestCache_EnsureRevisionClone_ClonesOnceThenHits(t *testing.T) {
	t.Parallel()

	git := newFakeGit()
	git.files["https://example.com/a.git"] = map[string]string{"quill.toml": "x"}
	c := NewCache(t.TempDir(), git)

	dir1, err := c.EnsureRevisionClone("https://example.com/a.git", "rev1")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir1, "quill.toml"))
	assert.Len(t, git.clones, 1)

	dir2, err := c.EnsureRevisionClone("https://example.com/a.git", "rev1")
	require.NoError(t, err)
	assert.Equal(t, dir1, dir2)
	assert.Len(t, git.clones, 1, "a second call for the same (url, revision) must not clone again")
}

func TestCache_EnsureRevisionClone_DistinctRevisionsGetDistinctDirs(t *testing.T) {
	t.Parallel()

	git := newFakeGit()
	c := NewCache(t.TempDir(), git)

	dir1, err := c.EnsureRevisionClone("https://example.com/a.git", "rev1")
	require.NoError(t, err)
	dir2, err := c.EnsureRevisionClone("https://example.com/a.git", "rev2")
	require.NoError(t, err)

	assert.NotEqual(t, dir1, dir2)
}

func TestCache_EnsureResolveClone_AlwaysFetchesAndChecksOutDefault(t *testing.T) {
	t.Parallel()

	git := newFakeGit()
	c := NewCache(t.TempDir(), git)

	dir1, err := c.EnsureResolveClone("https://example.com/a.git")
	require.NoError(t, err)
	assert.Len(t, git.clones, 1)
	assert.Len(t, git.checkouts, 1)

	dir2, err := c.EnsureResolveClone("https://example.com/a.git")
	require.NoError(t, err)
	assert.Equal(t, dir1, dir2)
	assert.Len(t, git.clones, 1, "a second resolve clone must reuse the directory")
	assert.Len(t, git.fetches, 1, "a second resolve clone must still fetch")
	assert.Len(t, git.checkouts, 2)
	assert.Equal(t, "", git.checkouts[0], "resolve clones always check out the default branch")
}

func TestLockUUID_StableAndDistinct(t *testing.T) {
	t.Parallel()

	a := LockUUID("https://example.com/a.git", "rev1")
	b := LockUUID("https://example.com/a.git", "rev1")
	c := LockUUID("https://example.com/a.git", "rev2")
	d := LockUUID("https://example.com/b.git", "rev1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
