// Package repository is the façade tying the object store, index,
// reference store, tree builder/reader, status engine and checkout
// engine together into the operations spec.md §4.7 names: init, stage,
// commit, log, branch management, checkout and restore.
package repository

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/gud-vcs/gud/config"
	"github.com/gud-vcs/gud/ignore"
	"github.com/gud-vcs/gud/index"
	"github.com/gud-vcs/gud/object"
	"github.com/gud-vcs/gud/refstore"
	"github.com/gud-vcs/gud/storage"
	"github.com/gud-vcs/gud/worktree"
)

// AdminDirName is the conventional name of gud's administrative
// directory (§6).
const AdminDirName = ".gud"

// gudignoreFile is the working-tree file ignore.Parse reads (§4 of
// SPEC_FULL.md).
const gudignoreFile = ".gudignore"

// Repository is the façade over one gud repository.
type Repository struct {
	root    string
	wt      billy.Filesystem
	admin   billy.Filesystem
	objects *storage.ObjectStore
	refs    *refstore.Store
	ignore  worktree.IgnoreMatcher
	cfg     config.Source
}

// Root returns the absolute path to the repository's working tree root.
func (r *Repository) Root() string { return r.root }

// FindRoot walks cwd and its ancestors looking for AdminDirName, as
// git-style tools do (§6: "Repository discovery").
func FindRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		info, err := os.Stat(filepath.Join(dir, AdminDirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("gud: no repository found in %s or any ancestor: %w", cwd, ErrNoRepo)
		}
		dir = parent
	}
}

// Init creates a new repository rooted at cwd (§4.7 "init"). It refuses
// if cwd or any ancestor already contains an administrative directory.
func Init(cwd string) (*Repository, error) {
	if existing, err := FindRoot(cwd); err == nil {
		return nil, fmt.Errorf("gud: repository already exists at %s: %w", filepath.Join(existing, AdminDirName), ErrRepoExists)
	}

	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}

	wt := osfs.New(abs)
	admin, err := wt.Chroot(AdminDirName)
	if err != nil {
		return nil, err
	}

	refs := refstore.New(admin)
	if err := refs.Init(); err != nil {
		return nil, err
	}
	if err := admin.MkdirAll("objects", 0o755); err != nil {
		return nil, err
	}
	if err := index.New().Save(admin); err != nil {
		return nil, err
	}

	return open(abs, wt, admin)
}

// Open discovers and opens the repository containing cwd (§4.7 implicit
// precondition for every other operation).
func Open(cwd string) (*Repository, error) {
	root, err := FindRoot(cwd)
	if err != nil {
		return nil, err
	}

	wt := osfs.New(root)
	admin, err := wt.Chroot(AdminDirName)
	if err != nil {
		return nil, err
	}

	return open(root, wt, admin)
}

func open(root string, wt, admin billy.Filesystem) (*Repository, error) {
	objectsFS, err := admin.Chroot("objects")
	if err != nil {
		return nil, err
	}

	r := &Repository{
		root:    root,
		wt:      wt,
		admin:   admin,
		objects: storage.NewObjectStore(objectsFS),
		refs:    refstore.New(admin),
	}

	if err := r.loadIgnore(); err != nil {
		return nil, err
	}
	if err := r.loadConfig(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Repository) loadIgnore() error {
	f, err := r.wt.Open(gudignoreFile)
	if err != nil {
		if os.IsNotExist(err) {
			r.ignore = ignore.None
			return nil
		}
		return err
	}
	defer f.Close()

	m, err := ignore.Parse(f)
	if err != nil {
		return err
	}
	r.ignore = m
	return nil
}

func (r *Repository) loadConfig() error {
	global, err := config.OpenGlobal()
	if err != nil {
		return err
	}
	if global != nil {
		defer global.Close()
	}

	repoFile, err := r.admin.Open("config")
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		repoFile = nil
	} else {
		defer repoFile.Close()
	}

	var globalReader io.Reader
	if global != nil {
		globalReader = global
	}
	var repoReader io.Reader
	if repoFile != nil {
		repoReader = repoFile
	}

	cfg, err := config.Resolve(globalReader, repoReader)
	if err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

// readCommit reads and decodes the commit object at h.
func (r *Repository) readCommit(h object.Hash) (*object.Commit, error) {
	payload, err := r.objects.ReadObject(h, object.KindCommit)
	if err != nil {
		return nil, err
	}
	return object.DecodeCommit(payload)
}

// headSnapshot returns the flat snapshot of the effective HEAD commit's
// root tree, or an empty snapshot if there are no commits yet (§4.4,
// §4.5 step 1).
func (r *Repository) headSnapshot() (object.Snapshot, error) {
	h, ok, err := r.refs.CurrentCommit()
	if err != nil {
		return nil, err
	}
	if !ok {
		return object.Snapshot{}, nil
	}

	commit, err := r.readCommit(h)
	if err != nil {
		return nil, err
	}
	return object.ReadTree(r.objects, commit.TreeHash)
}

func (r *Repository) loadIndex() (*index.Index, error) {
	return index.Load(r.admin)
}

func (r *Repository) saveIndex(idx *index.Index) error {
	return idx.Save(r.admin)
}
