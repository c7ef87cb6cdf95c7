// Package worktree implements the status engine (§4.5) and checkout
// engine (§4.6): the machinery that reconciles the working tree, the
// index, and a committed tree snapshot.
package worktree

import (
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/gud-vcs/gud/index"
	"github.com/gud-vcs/gud/object"
)

// IgnoreMatcher is the injected predicate the status and stage operations
// consult (§9 design note: "inject as an interface ... so the status
// engine is testable without filesystem I/O for the predicate").
type IgnoreMatcher interface {
	Match(path string) bool
}

type noneMatcher struct{}

func (noneMatcher) Match(string) bool { return false }

// NoIgnore is an IgnoreMatcher that never ignores anything.
var NoIgnore IgnoreMatcher = noneMatcher{}

// StatusResult holds the six disjoint path sets §4.5 defines.
type StatusResult struct {
	StagedAdded      []string
	StagedDeleted    []string
	StagedModified   []string
	UnstagedAdded    []string
	UnstagedDeleted  []string
	UnstagedModified []string
}

// node is the flat index snapshot reshaped as a path trie, so the working
// tree walk can detect "traversal reaches a missing intermediate
// directory" without repeatedly scanning the whole index (§4.5 step 4).
type node struct {
	entry    *object.Entry
	children map[string]*node
}

func buildTrie(snap object.Snapshot) *node {
	root := &node{children: map[string]*node{}}
	for path, entry := range snap {
		entry := entry
		parts := strings.Split(path, "/")
		cur := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := cur.children[part]
			if !ok || child.entry != nil {
				child = &node{children: map[string]*node{}}
				cur.children[part] = child
			}
			cur = child
		}
		cur.children[parts[len(parts)-1]] = &node{entry: &entry}
	}
	return root
}

// Status computes the tri-way diff between headSnap (the committed-tree
// snapshot at the effective HEAD, empty if no commits), idx (the current
// index) and the working tree rooted at wt, honoring the ignore predicate
// and skipping adminDir unconditionally (§4.5).
func Status(headSnap object.Snapshot, idx *index.Index, wt billy.Filesystem, adminDir string, ignore IgnoreMatcher) (*StatusResult, error) {
	if ignore == nil {
		ignore = NoIgnore
	}

	result := &StatusResult{}

	indexSnap := idx.Snapshot()
	added, removed, modified := object.Diff(headSnap, indexSnap)
	result.StagedAdded = added
	result.StagedDeleted = removed
	result.StagedModified = modified

	trie := buildTrie(indexSnap)
	visited := map[string]bool{}

	w := &walker{wt: wt, adminDir: adminDir, ignore: ignore, visited: visited}
	if err := w.walk("", trie, result); err != nil {
		return nil, err
	}

	for _, path := range idx.Paths() {
		if ignore.Match(path) {
			continue
		}
		if !visited[path] {
			result.UnstagedDeleted = append(result.UnstagedDeleted, path)
		}
	}

	sort.Strings(result.StagedAdded)
	sort.Strings(result.StagedDeleted)
	sort.Strings(result.StagedModified)
	sort.Strings(result.UnstagedAdded)
	sort.Strings(result.UnstagedDeleted)
	sort.Strings(result.UnstagedModified)

	return result, nil
}

type walker struct {
	wt       billy.Filesystem
	adminDir string
	ignore   IgnoreMatcher
	visited  map[string]bool
}

// walk visits the working-tree directory at prefix (repo-relative, ""
// for the root), comparing each entry against trie, the index subtree for
// that same directory.
func (w *walker) walk(prefix string, trie *node, result *StatusResult) error {
	dirPath := prefix
	if dirPath == "" {
		dirPath = "."
	}

	entries, err := w.wt.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, e := range entries {
		name := e.Name()
		if prefix == "" && name == w.adminDir {
			continue
		}

		entryPath := name
		if prefix != "" {
			entryPath = prefix + "/" + name
		}

		child := trie.children[name]

		if e.IsDir() {
			if w.ignore.Match(entryPath + "/") {
				continue
			}

			if child == nil || child.entry != nil {
				// Missing (or type-conflicting) intermediate directory:
				// report the shallowest untracked directory and stop
				// descent (§4.5 step 4).
				result.UnstagedAdded = append(result.UnstagedAdded, entryPath+"/")
				continue
			}

			if err := w.walk(entryPath, child, result); err != nil {
				return err
			}
			continue
		}

		if w.ignore.Match(entryPath) {
			continue
		}

		if child == nil || child.entry == nil {
			result.UnstagedAdded = append(result.UnstagedAdded, entryPath)
			continue
		}

		w.visited[entryPath] = true

		info, err := w.wt.Stat(entryPath)
		if err != nil {
			return err
		}

		hash, err := hashWorkingFile(w.wt, entryPath)
		if err != nil {
			return err
		}

		mode := uint32(info.Mode().Perm())
		if mode != child.entry.Mode || hash != child.entry.Hash {
			result.UnstagedModified = append(result.UnstagedModified, entryPath)
		}
	}

	return nil
}

// hashWorkingFile computes a blob's content hash via the Object Store's
// framing rule directly against the working tree, without going through
// ObjectStore (status never writes objects for files it has merely
// examined).
func hashWorkingFile(fs billy.Filesystem, path string) (object.Hash, error) {
	f, err := fs.Open(path)
	if err != nil {
		return object.Hash{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return object.Hash{}, err
	}

	return object.Sum(object.Frame(object.KindBlob, content)), nil
}
