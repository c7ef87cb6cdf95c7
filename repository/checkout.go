package repository

import (
	"fmt"
	"os"

	"github.com/gud-vcs/gud/object"
	"github.com/gud-vcs/gud/worktree"
)

// CheckoutReport describes the outcome of a checkout (§4.6 step 6).
type CheckoutReport struct {
	Hash     object.Hash
	Branch   string // set when the result is attached to a branch
	Detached bool
	Created  []string
	Modified []string
	Deleted  []string
}

// CheckoutBranch checks out the head of branch name (§4.6, §4.7's HEAD
// state machine).
func (r *Repository) CheckoutBranch(name string) (*CheckoutReport, error) {
	hash, ok, err := r.refs.Head(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("gud: branch %q: %w", name, ErrNoCommits)
	}
	return r.checkoutTo(hash)
}

// CheckoutHash checks out an arbitrary commit, identified by a full hash
// or unambiguous prefix (§4.6).
func (r *Repository) CheckoutHash(prefix string) (*CheckoutReport, error) {
	hash, err := r.objects.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	return r.checkoutTo(hash)
}

func (r *Repository) checkoutTo(target object.Hash) (*CheckoutReport, error) {
	status, err := r.Status()
	if err != nil {
		return nil, err
	}
	if worktree.Dirty(status) {
		return nil, worktree.ErrDirtyTree
	}

	commit, err := r.readCommit(target)
	if err != nil {
		return nil, err
	}

	targetSnap, err := object.ReadTree(r.objects, commit.TreeHash)
	if err != nil {
		return nil, err
	}

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	result, err := worktree.Checkout(r.refs, idx, r.wt, r.objects, target, targetSnap)
	if err != nil {
		return nil, err
	}

	if err := r.saveIndex(idx); err != nil {
		return nil, err
	}

	report := &CheckoutReport{
		Hash:     target,
		Created:  result.Created,
		Modified: result.Modified,
		Deleted:  result.Deleted,
	}

	if branch, ok, err := r.resolveBranchForHash(target); err != nil {
		return nil, err
	} else if ok {
		if err := r.refs.ClearDetached(); err != nil {
			return nil, err
		}
		if err := r.refs.SetCurrentBranch(branch); err != nil {
			return nil, err
		}
		report.Branch = branch
	} else {
		report.Detached = true
	}

	return report, nil
}

// Restore overwrites path in the working tree from the blob recorded in
// the HEAD snapshot (§4.7 "restore"), discarding an unstaged modification.
func (r *Repository) Restore(path string) error {
	head, err := r.headSnapshot()
	if err != nil {
		return err
	}

	entry, ok := head[path]
	if !ok {
		return fmt.Errorf("gud: %s: not present in HEAD", path)
	}

	payload, err := r.objects.ReadObject(entry.Hash, object.KindBlob)
	if err != nil {
		return err
	}

	f, err := r.wt.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(entry.Mode))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(payload)
	return err
}
