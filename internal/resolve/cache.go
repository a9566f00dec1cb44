package resolve

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/quill-hdl/quillpm/internal/vcsgit"
)

// Cache is the content-addressed, on-disk clone store: one refreshed clone
// per URL under "resolve", keyed by uuid_v5(url), and one
// clone-once-per-revision under "dependencies", keyed by
// uuid_v5(url+revision).
type Cache struct {
	root string
	git  vcsgit.Repo
}

// NewCache returns a Cache rooted at dir, using git for all clone/fetch/
// checkout operations.
func NewCache(dir string, git vcsgit.Repo) *Cache {
	return &Cache{root: dir, git: git}
}

// LockUUID derives the stable identity of a (url, revision) pair as
// uuid_v5(NAMESPACE_URL, url || revision), via uuid.NewSHA1 (Go's version-5,
// SHA1-based UUID construction) with uuid.NameSpaceURL as the namespace.
func LockUUID(url, revision string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url+revision))
}

func resolveUUID(url string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url))
}

// EnsureResolveClone returns the path to the always-fresh per-URL clone
// used to read the release index, fetching and checking out the default
// branch every call.
func (c *Cache) EnsureResolveClone(url string) (string, error) {
	dir := filepath.Join(c.root, "resolve", resolveUUID(url).String())

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := c.git.Clone(url, dir); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	} else {
		if err := c.git.Fetch(dir); err != nil {
			return "", err
		}
	}

	if err := c.git.Checkout(dir, ""); err != nil {
		return "", err
	}

	return dir, nil
}

// EnsureRevisionClone returns the path to the clone pinned at (url,
// revision), cloning only if the directory is absent. Presence of the
// directory is taken as a valid cache hit — it is never refreshed.
func (c *Cache) EnsureRevisionClone(url, revision string) (string, error) {
	dir := filepath.Join(c.root, "dependencies", LockUUID(url, revision).String())

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := c.git.Clone(url, dir); err != nil {
			return "", err
		}
		if err := c.git.Checkout(dir, revision); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	return dir, nil
}

// ManifestPath returns where a project manifest lives inside a clone dir.
func ManifestPath(cloneDir, manifestFileName string) string {
	return filepath.Join(cloneDir, manifestFileName)
}

// IndexPath exposes the publish manifest's location inside a clone dir, for
// the Resolver.
func (c *Cache) IndexPath(cloneDir string) string {
	return indexPath(cloneDir)
}
