// Package index implements the staging area: a mutable mapping from
// repo-relative path to (mode, kind, hash), persisted as a tab-separated
// text file (§4.2).
package index

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/go-git/go-billy/v5"

	"github.com/gud-vcs/gud/object"
)

// ErrMalformed is returned when an index line cannot be parsed: wrong
// field count (the format is strictly tab-delimited — §9's Open Question
// is resolved in favor of tab, space is rejected), bad mode, bad hash, or
// a kind other than "blob".
var ErrMalformed = errors.New("gud: malformed index")

// Index is the staging area. It only ever holds blob entries (§4.2).
type Index struct {
	entries map[string]object.Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: map[string]object.Entry{}}
}

// Get returns the entry staged for path, if any.
func (idx *Index) Get(path string) (object.Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Set upserts the entry staged for path.
func (idx *Index) Set(path string, e object.Entry) {
	idx.entries[path] = e
}

// Delete removes path from the index. It is a no-op if path is absent.
func (idx *Index) Delete(path string) {
	delete(idx.entries, path)
}

// Len returns the number of staged paths.
func (idx *Index) Len() int { return len(idx.entries) }

// Paths returns the staged paths in sorted order.
func (idx *Index) Paths() []string {
	ordered := treemap.NewWithStringComparator()
	for path := range idx.entries {
		ordered.Put(path, nil)
	}
	out := make([]string, 0, ordered.Size())
	for _, k := range ordered.Keys() {
		out = append(out, k.(string))
	}
	return out
}

// Snapshot returns an independent object.Snapshot equivalent to the
// index's current contents, for use by the diff routine shared with the
// tree reader (§9 design note).
func (idx *Index) Snapshot() object.Snapshot {
	return object.Snapshot(idx.entries).Clone()
}

// Replace discards the index's current contents and replaces them with
// snap, used by checkout (§4.6 step 5).
func (idx *Index) Replace(snap object.Snapshot) {
	idx.entries = snap.Clone()
}

const fileName = "index"

// Load reads the index file from admin, tolerating trailing whitespace
// and a missing final newline (§4.2). A missing file is treated as an
// empty index (the state right after init).
func Load(admin billy.Filesystem) (*Index, error) {
	idx := New()

	f, err := admin.Open(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %q has %d tab-separated fields, want 4", ErrMalformed, line, len(fields))
		}

		mode, err := strconv.ParseUint(fields[0], 8, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad mode %q: %v", ErrMalformed, fields[0], err)
		}

		if fields[1] != object.KindBlob.String() {
			return nil, fmt.Errorf("%w: kind %q, only blob entries are valid", ErrMalformed, fields[1])
		}

		hash, err := object.NewHash(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: bad hash %q: %v", ErrMalformed, fields[2], err)
		}

		idx.entries[fields[3]] = object.Entry{Mode: uint32(mode), Hash: hash}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return idx, nil
}

// Save writes the index back out, one `mode\tkind\thash\tpath\n` line per
// entry, sorted by path for reproducibility (§4.2 permits either order;
// gud always sorts).
func (idx *Index) Save(admin billy.Filesystem) error {
	f, err := admin.Create(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, path := range idx.Paths() {
		e := idx.entries[path]
		if _, err := fmt.Fprintf(w, "%06o\t%s\t%s\t%s\n", e.Mode, object.KindBlob, e.Hash, path); err != nil {
			return err
		}
	}
	return w.Flush()
}
