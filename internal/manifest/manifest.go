// Package manifest reads a Quill project manifest (quill.toml): the
// project's own name and the dependency declarations the resolver walks.
//
// Manifest parsing proper, and the project-manifest schema beyond what the
// lock/resolve core needs, is an external collaborator — this package
// models only the subset quillpm consumes.
package manifest

import (
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// FileName is the well-known manifest filename inside a Quill project.
const FileName = "quill.toml"

// PublishFileName is the well-known publish manifest filename (C1's
// per-repository release index), read from inside a cloned repository.
const PublishFileName = "quill.pub"

// Alias pairs an optional parent-local import name with a version
// requirement. An empty Name means the dependency is used under its own
// declared (canonical) name — the "version-only" declaration form.
type Alias struct {
	Name string
	Req  *semver.Constraints
}

// Dependency is one URL's declaration, expanded to the (name, VersionReq)
// pairs it was imported under: one pair for version-only and named-single
// declarations, more than one for named-multiple.
type Dependency struct {
	Aliases []Alias
}

// Manifest is a parsed quill.toml: the project's declared name and its
// dependency declarations, keyed by repository URL but preserving the
// declaration order within each URL and across URLs — both matter, because
// the Walker processes siblings in manifest declaration order.
type Manifest struct {
	Name string
	// URLs lists each distinct dependency URL once, in the order its first
	// declaration appeared.
	URLs []string
	// Dependencies maps a URL to its expanded declaration.
	Dependencies map[string]Dependency
}

// rawManifest mirrors the on-disk TOML shape: dependencies are an array of
// tables rather than a URL-keyed table so declaration order survives decode.
type rawManifest struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Dependencies []rawDependency `toml:"dependencies"`
}

type rawDependency struct {
	URL     string `toml:"url"`
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	return parse(data)
}

func parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Cause: err}
	}

	m := &Manifest{
		Name:         raw.Project.Name,
		Dependencies: make(map[string]Dependency),
	}

	for _, rd := range raw.Dependencies {
		if rd.URL == "" {
			return nil, &ParseError{Cause: errors.New("dependency entry missing \"url\"")}
		}
		if rd.Version == "" {
			return nil, &ParseError{Cause: errors.Errorf("dependency %q missing \"version\"", rd.URL)}
		}
		req, err := semver.NewConstraint(rd.Version)
		if err != nil {
			return nil, &ParseError{Cause: errors.Wrapf(err, "dependency %q has invalid version requirement %q", rd.URL, rd.Version)}
		}

		dep, exists := m.Dependencies[rd.URL]
		if !exists {
			m.URLs = append(m.URLs, rd.URL)
		}
		dep.Aliases = append(dep.Aliases, Alias{Name: rd.Name, Req: req})
		m.Dependencies[rd.URL] = dep
	}

	return m, nil
}

// ParseError wraps a manifest decode failure.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return "manifest parse error: " + e.Cause.Error()
}

func (e *ParseError) Unwrap() error { return e.Cause }
