package quillpm

import (
	"bytes"
	"os"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/quill-hdl/quillpm/internal/manifest"
	"github.com/quill-hdl/quillpm/internal/resolve"
	"github.com/quill-hdl/quillpm/internal/vcsgit"
)

// FileName is the well-known lockfile filename.
const FileName = "quill.lock"

const generatedHeader = "# This file is automatically generated by quillpm.\n# It is not intended for manual editing.\n"

// Lockfile is the in-memory, load/save-able set of locked dependencies.
// Build one with New or Load: the zero value has no lock table and no
// cache, so Update on it fails for any manifest that declares dependencies.
type Lockfile struct {
	lockTable map[string][]*Lock

	cache  *resolve.Cache
	logger *log.Logger

	// force and modified are per-Update/New scratch state, mirroring
	// lockfile.rs's own `force_update`/`modified` fields on Lockfile.
	force    bool
	modified bool
}

// New builds a Lockfile from scratch: a fresh project is equivalent to an
// update starting from nothing, so New is implemented literally as Update
// against an empty Lockfile.
func New(root *manifest.Manifest, cache *resolve.Cache, logger *log.Logger) (*Lockfile, error) {
	if logger == nil {
		logger = log.Default()
	}
	lf := &Lockfile{lockTable: make(map[string][]*Lock), cache: cache, logger: logger}
	if _, err := lf.Update(root, false); err != nil {
		return nil, err
	}
	return lf, nil
}

// NewDefaultCache is a convenience constructor wiring the production git
// backend into a resolve.Cache rooted at dir.
func NewDefaultCache(dir string) *resolve.Cache {
	return resolve.NewCache(dir, vcsgit.New())
}

// rawLockfile/rawLock/rawLockDependency mirror the on-disk TOML shape: a
// flat `projects` array, each with the fields named there.
type rawLockfile struct {
	Projects []rawLock `toml:"projects"`
}

type rawLock struct {
	Name         string              `toml:"name"`
	UUID         string              `toml:"uuid"`
	Version      string              `toml:"version"`
	URL          string              `toml:"url"`
	Revision     string              `toml:"revision"`
	Dependencies []rawLockDependency `toml:"dependencies"`
}

type rawLockDependency struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	URL      string `toml:"url"`
	Revision string `toml:"revision"`
}

// LockfileParseError wraps a lockfile decode failure.
type LockfileParseError struct {
	Cause error
}

func (e *LockfileParseError) Error() string { return "lockfile parse error: " + e.Cause.Error() }
func (e *LockfileParseError) Unwrap() error  { return e.Cause }

// Load reads and parses the lockfile at path, rebuilding lockTable by
// grouping on URL.
func Load(path string, cache *resolve.Cache, logger *log.Logger) (*Lockfile, error) {
	if logger == nil {
		logger = log.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading lockfile %s", path)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawLockfile
	if err := dec.Decode(&raw); err != nil {
		return nil, &LockfileParseError{Cause: err}
	}

	lf := &Lockfile{lockTable: make(map[string][]*Lock), cache: cache, logger: logger}
	for _, rl := range raw.Projects {
		lock, err := lockFromRaw(rl)
		if err != nil {
			return nil, &LockfileParseError{Cause: err}
		}
		lf.lockTable[lock.URL] = append(lf.lockTable[lock.URL], lock)
	}

	return lf, nil
}

func lockFromRaw(rl rawLock) (*Lock, error) {
	id, err := uuid.Parse(rl.UUID)
	if err != nil {
		return nil, errors.Wrapf(err, "project %q has invalid uuid %q", rl.Name, rl.UUID)
	}
	v, err := semver.NewVersion(rl.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "project %q has invalid version %q", rl.Name, rl.Version)
	}

	deps := make([]LockDependency, 0, len(rl.Dependencies))
	for _, rd := range rl.Dependencies {
		dv, err := semver.NewVersion(rd.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %q of project %q has invalid version %q", rd.Name, rl.Name, rd.Version)
		}
		deps = append(deps, LockDependency{Name: rd.Name, Version: dv, URL: rd.URL, Revision: rd.Revision})
	}

	return &Lock{
		Name:         rl.Name,
		UUID:         id,
		Version:      v,
		URL:          rl.URL,
		Revision:     rl.Revision,
		Dependencies: deps,
	}, nil
}

// Save flattens lockTable back to a sorted `projects` array and writes the
// TOML lockfile to path, prepending the generated-file header.
func (lf *Lockfile) Save(path string) error {
	locks := lf.allLocks()
	sort.Slice(locks, func(i, j int) bool { return locks[i].Name < locks[j].Name })

	raw := rawLockfile{Projects: make([]rawLock, len(locks))}
	for i, l := range locks {
		raw.Projects[i] = rawLock{
			Name:         l.Name,
			UUID:         l.UUID.String(),
			Version:      l.Version.String(),
			URL:          l.URL,
			Revision:     l.Revision,
			Dependencies: make([]rawLockDependency, len(l.Dependencies)),
		}
		for j, d := range l.Dependencies {
			raw.Projects[i].Dependencies[j] = rawLockDependency{
				Name: d.Name, Version: d.Version.String(), URL: d.URL, Revision: d.Revision,
			}
		}
	}

	body, err := toml.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "marshaling lockfile")
	}

	out := append([]byte(generatedHeader), body...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "writing lockfile %s", path)
	}
	return nil
}

func (lf *Lockfile) allLocks() []*Lock {
	var locks []*Lock
	for _, ls := range lf.lockTable {
		locks = append(locks, ls...)
	}
	return locks
}
