// Package quillpm is the dependency lock and resolution core for Quill, a
// hardware description language: given a project manifest that names other
// Quill projects by git URL and semver requirement, it computes a
// reproducible lockfile, fetches sources via git, and exposes a flat list
// of source files to Quill's (out-of-scope) code generator.
package quillpm

import (
	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// Lock is a fully resolved dependency node.
type Lock struct {
	Name         string
	UUID         uuid.UUID
	Version      *semver.Version
	URL          string
	Revision     string
	Dependencies []LockDependency

	// used is transient: set by the Resolver on every hit during a walk,
	// cleared at the start of Update, and consulted by the post-walk sweep.
	// It is never serialized (see Lockfile's TOML shape in lockfile.go).
	used bool
}

// LockDependency is a parent's recorded view of one of its own
// dependencies at lock time. Name is the parent-local alias, not
// necessarily the child Lock's canonical Name.
type LockDependency struct {
	Name     string
	Version  *semver.Version
	URL      string
	Revision string
}

// NameConflictError reports a root-level alias collision. Unlike transitive
// collisions, root collisions are never mangled.
type NameConflictError struct {
	Name string
}

func (e *NameConflictError) Error() string {
	return "name conflict: \"" + e.Name + "\" is declared more than once at the project root"
}

// VersionNotFoundError reports that neither the lockfile nor the release
// index yielded a release satisfying req for url.
type VersionNotFoundError struct {
	URL string
	Req string
}

func (e *VersionNotFoundError) Error() string {
	return "no version of " + e.URL + " satisfies " + e.Req
}
