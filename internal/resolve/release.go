package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/quill-hdl/quillpm/internal/manifest"
)

// Release is a single published (version, revision) pair.
type Release struct {
	Version  *semver.Version
	Revision string
}

// Index is a per-repository release manifest (C1), sorted descending by
// version on load so the first entry satisfying a VersionReq is the
// greatest one.
type Index struct {
	releases []Release
}

type rawIndex struct {
	Releases []rawRelease `toml:"releases"`
}

type rawRelease struct {
	Version  string `toml:"version"`
	Revision string `toml:"revision"`
}

// LoadIndex reads the publish manifest at path (manifest.PublishFileName,
// found inside a freshly fetched resolve-clone).
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading publish manifest %s", path)
	}

	var raw rawIndex
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Cause: err}
	}

	idx := &Index{releases: make([]Release, 0, len(raw.Releases))}
	for _, r := range raw.Releases {
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			return nil, &ParseError{Cause: errors.Wrapf(err, "invalid release version %q", r.Version)}
		}
		idx.releases = append(idx.releases, Release{Version: v, Revision: r.Revision})
	}

	sort.Slice(idx.releases, func(i, j int) bool {
		return idx.releases[i].Version.GreaterThan(idx.releases[j].Version)
	})

	return idx, nil
}

// Select returns the greatest release satisfying req, if any.
func (idx *Index) Select(req *semver.Constraints) (Release, bool) {
	for _, r := range idx.releases {
		if req.Check(r.Version) {
			return r, true
		}
	}
	return Release{}, false
}

// indexPath is where the release index lives inside a cloned repository.
func indexPath(cloneDir string) string {
	return filepath.Join(cloneDir, manifest.PublishFileName)
}

// ParseError wraps a publish-manifest decode failure.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("publish manifest parse error: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }
