package worktree

import (
	"errors"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"

	"github.com/gud-vcs/gud/index"
	"github.com/gud-vcs/gud/object"
	"github.com/gud-vcs/gud/refstore"
)

// ErrDirtyTree is returned when checkout is attempted with unsaved
// changes (§4.6 precondition, §7's dirty-tree kind).
var ErrDirtyTree = errors.New("gud: dirty-tree")

// BlobReader is the object-store capability checkout needs to
// materialize new or changed files.
type BlobReader interface {
	ReadObject(h object.Hash, expected object.Kind) ([]byte, error)
}

// Result reports what a checkout changed in the working tree.
type Result struct {
	Created  []string
	Modified []string
	Deleted  []string
}

// Dirty reports whether the working tree or index has changes that would
// be discarded by a checkout: the index must equal the HEAD snapshot, and
// no indexed file may have unstaged working-tree modifications (§4.6
// precondition).
func Dirty(status *StatusResult) bool {
	return len(status.StagedAdded) > 0 ||
		len(status.StagedDeleted) > 0 ||
		len(status.StagedModified) > 0 ||
		len(status.UnstagedModified) > 0 ||
		len(status.UnstagedDeleted) > 0
}

// Checkout reconciles wt and idx with targetSnap, the flat snapshot of the
// commit being checked out, and records targetHash as the detached-HEAD
// marker before touching any file (§4.6). Callers are responsible for the
// dirty-tree precondition (via Dirty) and for resolving whether
// targetHash lands back on a known branch afterward.
func Checkout(refs *refstore.Store, idx *index.Index, wt billy.Filesystem, store BlobReader, targetHash object.Hash, targetSnap object.Snapshot) (*Result, error) {
	currentSnap := idx.Snapshot()
	created, deleted, modified := object.Diff(currentSnap, targetSnap)

	sort.Strings(created)
	sort.Strings(deleted)
	sort.Strings(modified)

	// Step 3: record intent before mutating the tree, so a crash mid-
	// checkout leaves the repository detached but self-consistent.
	if err := refs.SetDetached(targetHash); err != nil {
		return nil, err
	}

	// Step 4: delete first, then best-effort prune now-empty parents.
	for _, p := range deleted {
		if err := wt.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		pruneEmptyParents(wt, path.Dir(p))
	}

	for _, p := range append(append([]string{}, created...), modified...) {
		entry := targetSnap[p]

		payload, err := store.ReadObject(entry.Hash, object.KindBlob)
		if err != nil {
			return nil, err
		}

		if dir := path.Dir(p); dir != "." {
			if err := wt.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}

		f, err := wt.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(entry.Mode))
		if err != nil {
			return nil, err
		}
		_, writeErr := f.Write(payload)
		closeErr := f.Close()
		if writeErr != nil {
			return nil, writeErr
		}
		if closeErr != nil {
			return nil, closeErr
		}
	}

	// Step 5: replace the index with the target snapshot.
	idx.Replace(targetSnap)

	return &Result{Created: created, Modified: modified, Deleted: deleted}, nil
}

// pruneEmptyParents walks upward from dir removing now-empty directories,
// stopping at the first non-empty (or otherwise unremovable) one (§4.6
// step 4: "best effort, ignoring non-empty errors").
func pruneEmptyParents(wt billy.Filesystem, dir string) {
	for dir != "." && dir != "/" && dir != "" {
		if err := wt.Remove(dir); err != nil {
			return
		}
		dir = path.Dir(dir)
	}
}
