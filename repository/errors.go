package repository

import "errors"

// Sentinel errors for the error kinds spec.md §7 defines that are not
// already owned by a lower package (object-missing etc. live in storage;
// dirty-tree lives in worktree; branch-exists/missing/invalid-name live
// in refstore).
var (
	// ErrNoRepo is returned when no administrative directory is found in
	// cwd or any ancestor.
	ErrNoRepo = errors.New("gud: no-repo")
	// ErrRepoExists is returned when init targets a path already inside a
	// repository.
	ErrRepoExists = errors.New("gud: repo-exists")
	// ErrIgnoredPath is returned when staging a path the ignore predicate
	// matches.
	ErrIgnoredPath = errors.New("gud: ignored-path")
	// ErrAdminPath is returned when staging a path under the
	// administrative directory.
	ErrAdminPath = errors.New("gud: admin-path")
	// ErrNoCommits is returned by operations that require an existing
	// head commit on a branch with no history.
	ErrNoCommits = errors.New("gud: no-commits")
	// ErrDetachedForbids is returned by commit while HEAD is detached.
	ErrDetachedForbids = errors.New("gud: detached-forbids")
	// ErrEmptyStaging is returned by commit when nothing is staged.
	ErrEmptyStaging = errors.New("gud: empty-staging")
	// ErrCurrentBranch is returned when deleting the branch currently
	// checked out (§4.7: "refuse deleting the current branch").
	ErrCurrentBranch = errors.New("gud: branch-is-current")
)
