package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TreeEntryMode is the literal mode string written for subtree entries
// (§4.1, §6): six octal digits, directory bit set.
const TreeEntryMode = "040000"

// ErrMalformedTree is returned when a tree payload cannot be parsed as a
// sequence of `mode\tkind\thash\tname\n` lines.
var ErrMalformedTree = errors.New("gud: malformed tree object")

// TreeEntry is one line of a tree object: a named pointer to a blob or a
// subtree.
type TreeEntry struct {
	Mode uint32
	Kind Kind
	Hash Hash
	Name string
}

// Tree is an ordered list of entries. The wire order is whatever the
// builder produced it in (§4.1: "the reader must not rely on
// lexicographic order") — gud's own BuildTree sorts by name before
// writing, to make tree hashes a pure function of file content (see
// DESIGN.md's note on the Open Question), but a Tree read from disk is
// not assumed to respect that.
type Tree struct {
	Entries []TreeEntry
}

// Encode serializes the tree to its payload form: one
// `mode\tkind\thash\tname\n` line per entry.
func (t *Tree) Encode() []byte {
	var buf bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&buf, "%06o\t%s\t%s\t%s\n", e.Mode, e.Kind, e.Hash, e.Name)
	}
	return buf.Bytes()
}

// DecodeTree parses a tree payload.
func DecodeTree(payload []byte) (*Tree, error) {
	t := &Tree{}
	if len(payload) == 0 {
		return t, nil
	}

	for _, line := range strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n") {
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %q has %d fields, want 4", ErrMalformedTree, line, len(fields))
		}

		mode, err := strconv.ParseUint(fields[0], 8, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad mode %q: %v", ErrMalformedTree, fields[0], err)
		}

		kind, ok := ParseKind(fields[1])
		if !ok || (kind != KindBlob && kind != KindTree) {
			return nil, fmt.Errorf("%w: bad entry kind %q", ErrMalformedTree, fields[1])
		}

		hash, err := NewHash(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: bad hash %q: %v", ErrMalformedTree, fields[2], err)
		}

		t.Entries = append(t.Entries, TreeEntry{
			Mode: uint32(mode),
			Kind: kind,
			Hash: hash,
			Name: fields[3],
		})
	}

	return t, nil
}
