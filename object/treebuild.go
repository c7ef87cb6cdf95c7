package object

import (
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
)

// TreeDirMode is the mode recorded for a subtree entry: directory bit set,
// six octal digits (§4.1, §6).
const TreeDirMode uint32 = 0o040000

// Writer is the object-store capability BuildTree needs: content-
// addressed writes of framed payloads. storage.ObjectStore implements it.
type Writer interface {
	WriteObject(kind Kind, payload []byte) (Hash, error)
}

// treeNode is either a leaf (blob entry) or an internal node holding named
// children, mirroring a directory during tree construction (§4.4 step 1).
type treeNode struct {
	entry    *Entry
	children map[string]*treeNode
}

func newDirNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

// BuildTree partitions snap by path component into a nested directory
// tree and recursively writes one tree object per directory level,
// returning the root's hash (§4.4). Sibling entries within a directory are
// written in name order: this canonicalizes the tree's byte encoding (and
// therefore its hash) as a pure function of the snapshot's content,
// resolving the ordering Open Question in favor of a deterministic port
// rather than a faithful insertion-order one (see DESIGN.md).
func BuildTree(w Writer, snap Snapshot) (Hash, error) {
	root := newDirNode()
	for path, entry := range snap {
		entry := entry
		parts := strings.Split(path, "/")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node.children[part]
			if !ok {
				child = newDirNode()
				node.children[part] = child
			}
			node = child
		}
		node.children[parts[len(parts)-1]] = &treeNode{entry: &entry}
	}

	return writeTreeNode(w, root)
}

func writeTreeNode(w Writer, node *treeNode) (Hash, error) {
	ordered := treemap.NewWithStringComparator()
	for name, child := range node.children {
		ordered.Put(name, child)
	}

	var entries []TreeEntry
	for _, name := range ordered.Keys() {
		childVal, _ := ordered.Get(name)
		child := childVal.(*treeNode)
		entryName := name.(string)

		if child.entry != nil {
			entries = append(entries, TreeEntry{
				Mode: child.entry.Mode,
				Kind: KindBlob,
				Hash: child.entry.Hash,
				Name: entryName,
			})
			continue
		}

		subHash, err := writeTreeNode(w, child)
		if err != nil {
			return Hash{}, err
		}
		entries = append(entries, TreeEntry{
			Mode: TreeDirMode,
			Kind: KindTree,
			Hash: subHash,
			Name: entryName,
		})
	}

	t := &Tree{Entries: entries}
	return w.WriteObject(KindTree, t.Encode())
}
