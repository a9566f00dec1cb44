package quillpm

import (
	"github.com/google/uuid"
	"github.com/quill-hdl/quillpm/internal/manifest"
	"github.com/quill-hdl/quillpm/internal/resolve"
)

// Update re-resolves root's dependency graph against the current lock
// table: a breadth-first walk (C4) that prefers already locked revisions,
// widening to the release index only on a lockfile miss or when
// forceUpdate is set. It returns whether the lockfile changed.
func (lf *Lockfile) Update(root *manifest.Manifest, forceUpdate bool) (bool, error) {
	lf.force = forceUpdate
	lf.modified = false

	nameTable := make(map[string]struct{})
	uuidTable := make(map[uuid.UUID]struct{})
	for _, locks := range lf.lockTable {
		for _, l := range locks {
			uuidTable[l.UUID] = struct{}{}
			l.used = false
		}
	}

	if err := lf.genLocks(root, nameTable, uuidTable, true); err != nil {
		return false, err
	}

	lf.sweep()

	return lf.modified, nil
}

// sweep is the post-walk sweep: any lock left unused after the walk is
// unreachable from the current manifest tree and is dropped.
func (lf *Lockfile) sweep() {
	for url, locks := range lf.lockTable {
		kept := locks[:0]
		for _, l := range locks {
			if l.used {
				kept = append(kept, l)
				continue
			}
			lf.modified = true
			if lf.logger != nil {
				lf.logger.Infof("removing dependency (%s @ %s)", l.URL, l.Version)
			}
		}
		if len(kept) == 0 {
			delete(lf.lockTable, url)
		} else {
			lf.lockTable[url] = kept
		}
	}
}

// resolvedDep is one (release, parent-local alias) pair a dependency
// declaration expands to; alias is "" when the declaration was
// version-only, in which case the child's own project name is used.
type resolvedDep struct {
	url     string
	release resolve.Release
	alias   string
}

// resolveDeclared expands every dependency declaration of m into its
// (release, alias) pairs via the Resolver, in manifest declaration order.
func (lf *Lockfile) resolveDeclared(m *manifest.Manifest) ([]resolvedDep, error) {
	var out []resolvedDep
	for _, url := range m.URLs {
		decl := m.Dependencies[url]
		for _, a := range decl.Aliases {
			release, err := lf.resolveVersion(url, a.Req)
			if err != nil {
				return nil, err
			}
			out = append(out, resolvedDep{url: url, release: release, alias: a.Name})
		}
	}
	return out, nil
}

// loadChildManifest ensures the pinned clone for (url, revision) exists and
// parses its project manifest.
func (lf *Lockfile) loadChildManifest(url, revision string) (string, *manifest.Manifest, error) {
	dir, err := lf.cache.EnsureRevisionClone(url, revision)
	if err != nil {
		return "", nil, err
	}
	m, err := manifest.Load(resolve.ManifestPath(dir, manifest.FileName))
	if err != nil {
		return "", nil, err
	}
	return dir, m, nil
}

// genLocks is one BFS frame: resolve every declared dependency of m,
// materialize its Lock (creating one the first time its uuid is seen), then
// recurse into the newly discovered manifests only after every sibling at
// this depth has been processed — BFS is what lets the root consume naming
// priority before any transitive node.
func (lf *Lockfile) genLocks(m *manifest.Manifest, nameTable map[string]struct{}, uuidTable map[uuid.UUID]struct{}, root bool) error {
	resolved, err := lf.resolveDeclared(m)
	if err != nil {
		return err
	}

	var childManifests []*manifest.Manifest

	for _, rd := range resolved {
		_, childManifest, err := lf.loadChildManifest(rd.url, rd.release.Revision)
		if err != nil {
			return err
		}

		candidate := rd.alias
		if candidate == "" {
			candidate = childManifest.Name
		}
		name, err := pickName(candidate, nameTable, root)
		if err != nil {
			return err
		}

		deps, err := lf.buildLockDependencies(childManifest)
		if err != nil {
			return err
		}

		id := resolve.LockUUID(rd.url, rd.release.Revision)
		if _, seen := uuidTable[id]; seen {
			continue
		}
		uuidTable[id] = struct{}{}

		lock := &Lock{
			Name:         name,
			UUID:         id,
			Version:      rd.release.Version,
			URL:          rd.url,
			Revision:     rd.release.Revision,
			Dependencies: deps,
			used:         true,
		}
		lf.lockTable[rd.url] = append(lf.lockTable[rd.url], lock)
		lf.modified = true
		if lf.logger != nil {
			lf.logger.Infof("adding dependency (%s @ %s)", lock.URL, lock.Version)
		}

		childManifests = append(childManifests, childManifest)
	}

	for _, cm := range childManifests {
		if err := lf.genLocks(cm, nameTable, uuidTable, false); err != nil {
			return err
		}
	}

	return nil
}

// buildLockDependencies resolves m's own dependencies one level only, to
// record the parent's view of its children. This inner resolution never
// recurses and never touches nameTable: LockDependency entries use the
// parent-local alias (or child canonical name), not the Arbiter's mangled
// Lock.Name.
func (lf *Lockfile) buildLockDependencies(m *manifest.Manifest) ([]LockDependency, error) {
	resolved, err := lf.resolveDeclared(m)
	if err != nil {
		return nil, err
	}

	deps := make([]LockDependency, 0, len(resolved))
	for _, rd := range resolved {
		name := rd.alias
		if name == "" {
			_, childManifest, err := lf.loadChildManifest(rd.url, rd.release.Revision)
			if err != nil {
				return nil, err
			}
			name = childManifest.Name
		}
		deps = append(deps, LockDependency{
			Name: name, Version: rd.release.Version, URL: rd.url, Revision: rd.release.Revision,
		})
	}
	return deps, nil
}
