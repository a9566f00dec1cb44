package quillpm

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/quill-hdl/quillpm/internal/resolve"
)

// fakeGit is an in-memory vcsgit.Repo double. Each repo URL carries the
// file set written on Clone (its default-branch HEAD, used by the resolve
// clone to publish quill.pub) plus, optionally, per-revision overrides
// applied on Checkout (used by the dependency clone to pin quill.toml to a
// specific release).
type fakeGit struct {
	head      map[string]map[string]string
	revisions map[string]map[string]map[string]string

	dirURL    map[string]string
	clones    []string
	fetches   []string
	checkouts []string
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		head:      make(map[string]map[string]string),
		revisions: make(map[string]map[string]map[string]string),
		dirURL:    make(map[string]string),
	}
}

func (g *fakeGit) addRepo(url string, headFiles map[string]string) {
	g.head[url] = headFiles
}

func (g *fakeGit) addRevision(url, revision string, files map[string]string) {
	if g.revisions[url] == nil {
		g.revisions[url] = make(map[string]map[string]string)
	}
	g.revisions[url][revision] = files
}

func (g *fakeGit) Clone(url, dir string) error {
	g.clones = append(g.clones, url)
	g.dirURL[dir] = url
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeFiles(dir, g.head[url])
}

func (g *fakeGit) Fetch(dir string) error {
	g.fetches = append(g.fetches, dir)
	return nil
}

func (g *fakeGit) Checkout(dir, revision string) error {
	g.checkouts = append(g.checkouts, revision)
	url := g.dirURL[dir]
	if files, ok := g.revisions[url][revision]; ok {
		return writeFiles(dir, files)
	}
	return nil
}

func writeFiles(dir string, files map[string]string) error {
	for name, contents := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func testCache(t *testing.T, git *fakeGit) *resolve.Cache {
	t.Helper()
	return resolve.NewCache(t.TempDir(), git)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}
