package quillpm

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/quill-hdl/quillpm/internal/resolve"
)

// resolveVersion is the Version Resolver (C3): given (url, req), return one
// concrete Release, preferring a revision already in the lockfile and only
// consulting the release index on a lockfile miss or an explicit
// force-update.
func (lf *Lockfile) resolveVersion(url string, req *semver.Constraints) (resolve.Release, error) {
	locked, ok := lf.resolveFromLockfile(url, req)
	if ok {
		if !lf.force {
			return locked, nil
		}

		latest, err := lf.resolveFromLatest(url, req)
		if err != nil {
			return resolve.Release{}, err
		}
		if !latest.Version.Equal(locked.Version) && lf.logger != nil {
			lf.logger.Infof("updating dependency (%s @ %s -> %s)", url, locked.Version, latest.Version)
		}
		return latest, nil
	}

	return lf.resolveFromLatest(url, req)
}

// resolveFromLockfile returns the greatest locked version satisfying req,
// with its used flag set on a hit.
func (lf *Lockfile) resolveFromLockfile(url string, req *semver.Constraints) (resolve.Release, bool) {
	locks := lf.lockTable[url]
	if len(locks) == 0 {
		return resolve.Release{}, false
	}

	sort.Slice(locks, func(i, j int) bool { return locks[i].Version.GreaterThan(locks[j].Version) })

	for _, l := range locks {
		if req.Check(l.Version) {
			l.used = true
			return resolve.Release{Version: l.Version, Revision: l.Revision}, true
		}
	}
	return resolve.Release{}, false
}

// resolveFromLatest fetches/refreshes the resolve-clone for url, loads its
// release index, and returns the greatest release satisfying req.
func (lf *Lockfile) resolveFromLatest(url string, req *semver.Constraints) (resolve.Release, error) {
	dir, err := lf.cache.EnsureResolveClone(url)
	if err != nil {
		return resolve.Release{}, err
	}

	idx, err := resolve.LoadIndex(lf.cache.IndexPath(dir))
	if err != nil {
		return resolve.Release{}, err
	}

	release, ok := idx.Select(req)
	if !ok {
		return resolve.Release{}, &VersionNotFoundError{URL: url, Req: req.String()}
	}
	return release, nil
}
