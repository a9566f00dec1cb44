package quillpm

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SourceExt and GeneratedExt are Quill's source extension and the
// extension its code generator's output carries (the `.ql` → `.v`
// projection).
const (
	SourceExt    = ".ql"
	GeneratedExt = ".v"
)

// PathTriple is one (project, src, dst) projection the code generator
// consumes (C7).
type PathTriple struct {
	Project string
	Src     string
	Dst     string
}

// Paths enumerates source files for every locked project, projecting each
// into a (project, src, dst) triple under baseDst. Ordering follows map
// iteration over the lock table; callers needing determinism should sort
// the result.
func (lf *Lockfile) Paths(baseDst string) ([]PathTriple, error) {
	var out []PathTriple

	for _, locks := range lf.lockTable {
		for _, l := range locks {
			dir, err := lf.cache.EnsureRevisionClone(l.URL, l.Revision)
			if err != nil {
				return nil, err
			}

			err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || filepath.Ext(path) != SourceExt {
					return nil
				}

				rel, err := filepath.Rel(dir, path)
				if err != nil {
					return err
				}

				dst := filepath.Join(baseDst, l.Name, rel)
				dst = strings.TrimSuffix(dst, SourceExt) + GeneratedExt

				out = append(out, PathTriple{Project: l.Name, Src: path, Dst: dst})
				return nil
			})
			if err != nil {
				return nil, errors.Wrapf(err, "enumerating sources for %s", l.Name)
			}
		}
	}

	return out, nil
}
