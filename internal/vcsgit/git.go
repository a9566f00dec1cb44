// Package vcsgit is the thin git interface the rest of quillpm depends on:
// clone, fetch, and checkout(revision), with no other VCS surface exposed.
// It wraps github.com/Masterminds/vcs, the same library golang-dep's own
// vcs_source.go clones and checks out projects through.
package vcsgit

import (
	"strings"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"
)

// Repo is the git handle the cache layer needs: Clone, Fetch,
// Checkout(revision). An empty revision passed to Checkout selects the
// default branch.
type Repo interface {
	Clone(url, dir string) error
	Fetch(dir string) error
	Checkout(dir, revision string) error
}

// GitFailure reports a clone, fetch, or checkout failure. Any such failure
// is fatal to the current resolution; callers perform no retry.
type GitFailure struct {
	Op    string // "clone", "fetch", or "checkout"
	URL   string
	Cause error
}

func (e *GitFailure) Error() string {
	return "git " + e.Op + " failed for " + e.URL + ": " + e.Cause.Error()
}

func (e *GitFailure) Unwrap() error { return e.Cause }

// repo is the production Repo backed by a real git binary via
// Masterminds/vcs.
type repo struct{}

// New returns the production git Repo.
func New() Repo { return repo{} }

func (repo) Clone(url, dir string) error {
	r, err := vcs.NewGitRepo(url, dir)
	if err != nil {
		return &GitFailure{Op: "clone", URL: url, Cause: errors.Wrap(err, "constructing git repo handle")}
	}
	if err := r.Get(); err != nil {
		return &GitFailure{Op: "clone", URL: url, Cause: err}
	}
	return nil
}

func (repo) Fetch(dir string) error {
	r, err := vcs.NewGitRepo("", dir)
	if err != nil {
		return &GitFailure{Op: "fetch", URL: dir, Cause: errors.Wrap(err, "constructing git repo handle")}
	}
	if err := r.Update(); err != nil {
		return &GitFailure{Op: "fetch", URL: dir, Cause: err}
	}
	return nil
}

// Checkout moves dir's working tree to revision. An empty revision checks
// out the repository's default branch.
func (repo) Checkout(dir, revision string) error {
	r, err := vcs.NewGitRepo("", dir)
	if err != nil {
		return &GitFailure{Op: "checkout", URL: dir, Cause: errors.Wrap(err, "constructing git repo handle")}
	}

	if revision == "" {
		def, err := defaultBranch(r)
		if err != nil {
			return &GitFailure{Op: "checkout", URL: dir, Cause: err}
		}
		revision = def
	}

	if err := r.UpdateVersion(revision); err != nil {
		return &GitFailure{Op: "checkout", URL: dir, Cause: err}
	}
	return nil
}

// defaultBranch asks the local clone's remote HEAD for the branch `git
// clone` itself would have checked out.
func defaultBranch(r *vcs.GitRepo) (string, error) {
	out, err := r.RunFromDir("git", "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		// Fall back to whatever is already checked out.
		return r.Current()
	}
	ref := strings.TrimPrefix(strings.TrimSpace(string(out)), "refs/remotes/origin/")
	if ref == "" {
		return r.Current()
	}
	return ref, nil
}
