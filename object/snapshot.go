package object

// Entry is the metadata gud tracks for one path in either a committed tree
// or the index: its permission bits and the hash of its blob. Both the
// index and the tree reader share this representation (§9 design note),
// so a single Diff routine serves both the staged diff and the checkout
// delta.
type Entry struct {
	Mode uint32
	Hash Hash
}

// Snapshot is a flat mapping from repo-relative, forward-slash path to the
// entry recorded for it. It is what a tree fully materializes into (§4.4)
// and what the index persists (§4.2).
type Snapshot map[string]Entry

// Clone returns an independent copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Diff compares two snapshots and returns the paths added in b, removed
// from a, and present in both but differing in (mode, hash). Used for the
// staged-* sets (head vs index) in §4.5 and for the checkout delta in
// §4.6.
func Diff(a, b Snapshot) (added, removed, modified []string) {
	for path, be := range b {
		ae, ok := a[path]
		if !ok {
			added = append(added, path)
			continue
		}
		if ae != be {
			modified = append(modified, path)
		}
	}
	for path := range a {
		if _, ok := b[path]; !ok {
			removed = append(removed, path)
		}
	}
	return added, removed, modified
}
