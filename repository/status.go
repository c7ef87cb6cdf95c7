package repository

import "github.com/gud-vcs/gud/worktree"

// Status computes the tri-way comparison between HEAD, the index and the
// working tree (§4.5).
func (r *Repository) Status() (*worktree.StatusResult, error) {
	head, err := r.headSnapshot()
	if err != nil {
		return nil, err
	}

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	return worktree.Status(head, idx, r.wt, AdminDirName, r.ignore)
}
