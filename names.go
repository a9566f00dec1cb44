package quillpm

import "strconv"

// pickName implements the Name Arbiter (C5): accept the candidate name if
// it's free; otherwise fail at the root (no mangling) or probe candidate_0,
// candidate_1, ... below the root.
func pickName(candidate string, nameTable map[string]struct{}, root bool) (string, error) {
	if _, taken := nameTable[candidate]; !taken {
		nameTable[candidate] = struct{}{}
		return candidate, nil
	}

	if root {
		return "", &NameConflictError{Name: candidate}
	}

	for suffix := 0; ; suffix++ {
		probe := candidate + "_" + strconv.Itoa(suffix)
		if _, taken := nameTable[probe]; !taken {
			nameTable[probe] = struct{}{}
			return probe, nil
		}
	}
}
