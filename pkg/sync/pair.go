package sync

import (
	"fmt"
	"path/filepath"
	"strings"
)

// A Pair is an entry in the walked tree along with the path of the same
// entry in the other tree.
type Pair struct {
	// From is the path of the entry in the tree being walked.
	From string

	// To is the path of the entry with the same relative path in the other
	// tree. It may not exist.
	To string
}

// newPair projects `path`, which must be within `fromRoot`, onto `toRoot`.
// For example, `/src/sub/a.txt` walked from `/src` maps to
// `/replica/sub/a.txt` when `toRoot` is `/replica`.
func newPair(fromRoot, toRoot, path string) (Pair, error) {
	relativePath, err := filepath.Rel(fromRoot, path)
	if err != nil {
		return Pair{}, err
	}

	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return Pair{}, fmt.Errorf("%q is not within %q", path, fromRoot)
	}
	return Pair{From: path, To: filepath.Join(toRoot, relativePath)}, nil
}

// rebase returns the path with the same position relative to `newRoot` as
// `path` has relative to `oldRoot`.
func rebase(oldRoot, newRoot, path string) (string, error) {
	pair, err := newPair(oldRoot, newRoot, path)
	return pair.To, err
}
