package repository

import (
	"fmt"
	"sort"

	"github.com/gud-vcs/gud/object"
)

// BranchCreate creates a new branch pointing at the effective HEAD commit
// (§4.7 "branch create"). If HEAD is currently detached, the detached
// marker is cleared and the current-branch pointer moves to the new
// branch (§4.7's HEAD state machine).
func (r *Repository) BranchCreate(name string) error {
	head, ok, err := r.refs.CurrentCommit()
	if err != nil {
		return err
	}

	if err := r.refs.CreateBranch(name, head, ok); err != nil {
		return err
	}

	_, detached, err := r.refs.Detached()
	if err != nil {
		return err
	}
	if detached {
		if err := r.refs.ClearDetached(); err != nil {
			return err
		}
		if err := r.refs.SetCurrentBranch(name); err != nil {
			return err
		}
	}

	return nil
}

// BranchRename renames a branch, keeping the current-branch pointer in
// sync if the renamed branch is the one checked out.
func (r *Repository) BranchRename(oldName, newName string) error {
	current, err := r.refs.CurrentBranch()
	if err != nil {
		return err
	}

	if err := r.refs.RenameBranch(oldName, newName); err != nil {
		return err
	}

	if current == oldName {
		if _, detached, err := r.refs.Detached(); err != nil {
			return err
		} else if !detached {
			if err := r.refs.SetCurrentBranch(newName); err != nil {
				return err
			}
		}
	}

	return nil
}

// BranchDelete deletes a branch, refusing if it is the one currently
// checked out (§4.7: "refuse deleting the current branch").
func (r *Repository) BranchDelete(name string) error {
	current, err := r.refs.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		if _, detached, derr := r.refs.Detached(); derr != nil {
			return derr
		} else if !detached {
			return fmt.Errorf("gud: %s: %w", name, ErrCurrentBranch)
		}
	}

	return r.refs.DeleteBranch(name)
}

// Branches lists every branch name.
func (r *Repository) Branches() ([]string, error) {
	names, err := r.refs.Branches()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// resolveBranchForHash implements the checkout tie-break (§4.6 step 6,
// §9's Open Question resolution): prefer the current branch if its head
// equals hash, else the lexicographically smallest branch whose head
// does.
func (r *Repository) resolveBranchForHash(hash object.Hash) (name string, ok bool, err error) {
	branches, err := r.refs.Branches()
	if err != nil {
		return "", false, err
	}

	current, err := r.refs.CurrentBranch()
	if err != nil {
		return "", false, err
	}

	var matches []string
	for _, b := range branches {
		h, headOK, err := r.refs.Head(b)
		if err != nil {
			return "", false, err
		}
		if headOK && h == hash {
			matches = append(matches, b)
		}
	}

	if len(matches) == 0 {
		return "", false, nil
	}

	for _, m := range matches {
		if m == current {
			return m, true, nil
		}
	}

	sort.Strings(matches)
	return matches[0], true, nil
}
