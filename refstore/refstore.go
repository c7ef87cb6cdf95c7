// Package refstore implements gud's reference store: the current-branch
// pointer, per-branch head commits, and the detached-HEAD marker (§4.3).
package refstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/gud-vcs/gud/object"
)

const (
	branchFile   = "BRANCH"
	detachedFile = "DETACHED_HEAD"
	headsDir     = "heads"
	// DefaultBranch is the branch created by init (§4.7).
	DefaultBranch = "main"
)

var (
	// ErrBranchExists is returned when creating a branch that already has
	// a heads/ file.
	ErrBranchExists = errors.New("gud: branch-exists")
	// ErrBranchMissing is returned when operating on a branch with no
	// heads/ file.
	ErrBranchMissing = errors.New("gud: branch-missing")
	// ErrInvalidName is returned when a branch name fails branchNameRE.
	ErrInvalidName = errors.New("gud: invalid-name")
)

// branchNameRE matches the same shape the original source enforces for
// usernames (ported from gud/helpers.py's is_valid_username): word
// characters only, at most 16 of them.
var branchNameRE = regexp.MustCompile(`^\w{1,16}$`)

// ValidBranchName reports whether name is an acceptable branch name.
func ValidBranchName(name string) bool {
	return branchNameRE.MatchString(name)
}

// Store is the reference store rooted at the repository's admin
// directory.
type Store struct {
	admin billy.Filesystem
}

// New returns a Store persisting into admin.
func New(admin billy.Filesystem) *Store {
	return &Store{admin: admin}
}

// Init creates the initial reference state for a freshly-created
// repository: BRANCH=main, heads/main empty, DETACHED_HEAD empty (§4.7).
func (s *Store) Init() error {
	if err := s.admin.MkdirAll(headsDir, 0o755); err != nil {
		return err
	}
	if err := s.writeFile(branchFile, DefaultBranch); err != nil {
		return err
	}
	if err := s.writeFile(detachedFile, ""); err != nil {
		return err
	}
	return s.writeFile(s.admin.Join(headsDir, DefaultBranch), "")
}

// CurrentBranch returns the name of the branch currently checked out,
// regardless of whether HEAD is detached.
func (s *Store) CurrentBranch() (string, error) {
	return s.readFile(branchFile)
}

// SetCurrentBranch rewrites the BRANCH pointer.
func (s *Store) SetCurrentBranch(name string) error {
	return s.writeFile(branchFile, name)
}

// Detached returns the commit hash HEAD is detached at, and whether HEAD
// is in fact detached (§3, §4.3).
func (s *Store) Detached() (object.Hash, bool, error) {
	raw, err := s.readFile(detachedFile)
	if err != nil {
		return object.Hash{}, false, err
	}
	if raw == "" {
		return object.Hash{}, false, nil
	}
	h, err := object.NewHash(raw)
	if err != nil {
		return object.Hash{}, false, fmt.Errorf("gud: %s: %w", detachedFile, err)
	}
	return h, true, nil
}

// SetDetached writes the detached-HEAD marker.
func (s *Store) SetDetached(h object.Hash) error {
	return s.writeFile(detachedFile, h.String())
}

// ClearDetached empties the detached-HEAD marker, restoring attached
// state.
func (s *Store) ClearDetached() error {
	return s.writeFile(detachedFile, "")
}

// BranchExists reports whether a heads/ file exists for name.
func (s *Store) BranchExists(name string) (bool, error) {
	_, err := s.admin.Stat(s.admin.Join(headsDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Head returns the head commit hash of branch name, and whether the
// branch has any commits at all (an empty heads/ file means none).
func (s *Store) Head(name string) (object.Hash, bool, error) {
	exists, err := s.BranchExists(name)
	if err != nil {
		return object.Hash{}, false, err
	}
	if !exists {
		return object.Hash{}, false, fmt.Errorf("gud: branch %q: %w", name, ErrBranchMissing)
	}

	raw, err := s.readFile(s.admin.Join(headsDir, name))
	if err != nil {
		return object.Hash{}, false, err
	}
	if raw == "" {
		return object.Hash{}, false, nil
	}

	h, err := object.NewHash(raw)
	if err != nil {
		return object.Hash{}, false, fmt.Errorf("gud: heads/%s: %w", name, err)
	}
	return h, true, nil
}

// SetHead rewrites the head commit hash of branch name.
func (s *Store) SetHead(name string, h object.Hash) error {
	return s.writeFile(s.admin.Join(headsDir, name), h.String())
}

// CurrentCommit returns the effective HEAD commit: the detached-HEAD hash
// if set, else the current branch's head (ok is false if that branch has
// no commits yet) (§4.3 contract).
func (s *Store) CurrentCommit() (hash object.Hash, ok bool, err error) {
	if h, detached, err := s.Detached(); err != nil {
		return object.Hash{}, false, err
	} else if detached {
		return h, true, nil
	}

	branch, err := s.CurrentBranch()
	if err != nil {
		return object.Hash{}, false, err
	}
	return s.Head(branch)
}

// CreateBranch creates heads/name with head as its initial commit (ok
// indicates whether head is meaningful; a branch can be created with no
// commits at all, e.g. a second branch from an empty repo is never
// needed in practice but is not forbidden).
func (s *Store) CreateBranch(name string, head object.Hash, ok bool) error {
	if !ValidBranchName(name) {
		return fmt.Errorf("gud: branch name %q: %w", name, ErrInvalidName)
	}
	exists, err := s.BranchExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("gud: branch %q: %w", name, ErrBranchExists)
	}

	value := ""
	if ok {
		value = head.String()
	}
	return s.writeFile(s.admin.Join(headsDir, name), value)
}

// DeleteBranch removes heads/name. Callers must check it is not the
// current branch (§4.7: "refuse deleting the current branch").
func (s *Store) DeleteBranch(name string) error {
	exists, err := s.BranchExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("gud: branch %q: %w", name, ErrBranchMissing)
	}
	return s.admin.Remove(s.admin.Join(headsDir, name))
}

// RenameBranch moves heads/oldName to heads/newName.
func (s *Store) RenameBranch(oldName, newName string) error {
	if !ValidBranchName(newName) {
		return fmt.Errorf("gud: branch name %q: %w", newName, ErrInvalidName)
	}
	exists, err := s.BranchExists(oldName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("gud: branch %q: %w", oldName, ErrBranchMissing)
	}
	newExists, err := s.BranchExists(newName)
	if err != nil {
		return err
	}
	if newExists {
		return fmt.Errorf("gud: branch %q: %w", newName, ErrBranchExists)
	}
	return s.admin.Rename(s.admin.Join(headsDir, oldName), s.admin.Join(headsDir, newName))
}

// Branches lists every branch name that has a heads/ file.
func (s *Store) Branches() ([]string, error) {
	entries, err := s.admin.ReadDir(headsDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *Store) readFile(name string) (string, error) {
	f, err := s.admin.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func (s *Store) writeFile(name, content string) error {
	f, err := s.admin.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(content))
	return err
}
