package repository

import (
	"fmt"
	"time"

	"github.com/gud-vcs/gud/object"
)

// Commit builds a root tree from the index and records a new commit on
// the current branch (§4.7 "commit"). It refuses while detached
// (ErrDetachedForbids) or when nothing is staged relative to HEAD
// (ErrEmptyStaging).
func (r *Repository) Commit(message string) (object.Hash, error) {
	if _, detached, err := r.refs.Detached(); err != nil {
		return object.Hash{}, err
	} else if detached {
		return object.Hash{}, ErrDetachedForbids
	}

	idx, err := r.loadIndex()
	if err != nil {
		return object.Hash{}, err
	}

	headHash, headOK, err := r.refs.CurrentCommit()
	if err != nil {
		return object.Hash{}, err
	}

	headSnap, err := r.headSnapshot()
	if err != nil {
		return object.Hash{}, err
	}

	added, removed, modified := object.Diff(headSnap, idx.Snapshot())
	if len(added) == 0 && len(removed) == 0 && len(modified) == 0 {
		return object.Hash{}, ErrEmptyStaging
	}

	rootHash, err := object.BuildTree(r.objects, idx.Snapshot())
	if err != nil {
		return object.Hash{}, err
	}

	name, err := r.cfg.UserName()
	if err != nil {
		return object.Hash{}, err
	}
	email, err := r.cfg.UserEmail()
	if err != nil {
		return object.Hash{}, err
	}

	var parent *object.Hash
	if headOK {
		parent = &headHash
	}

	commit := &object.Commit{
		TreeHash:   rootHash,
		ParentHash: parent,
		Name:       name,
		Email:      email,
		Timestamp:  time.Now().Format(time.RFC3339),
		Message:    message,
	}

	hash, err := r.objects.WriteObject(object.KindCommit, commit.Encode())
	if err != nil {
		return object.Hash{}, err
	}

	branch, err := r.refs.CurrentBranch()
	if err != nil {
		return object.Hash{}, err
	}
	if err := r.refs.SetHead(branch, hash); err != nil {
		return object.Hash{}, err
	}

	return hash, nil
}

// Log walks parent links from the effective HEAD, returning commits
// newest-to-oldest (§4.7 "log"). An empty (no-commits) repository yields
// an empty, non-error slice.
func (r *Repository) Log() ([]*object.Commit, error) {
	cur, ok, err := r.refs.CurrentCommit()
	if err != nil {
		return nil, err
	}

	var commits []*object.Commit
	seen := map[object.Hash]bool{}

	for ok {
		if seen[cur] {
			return nil, fmt.Errorf("gud: commit graph cycle detected at %s", cur)
		}
		seen[cur] = true

		commit, err := r.readCommit(cur)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)

		if commit.ParentHash == nil {
			break
		}
		cur = *commit.ParentHash
	}

	return commits, nil
}
