package object

// Reader is the object-store capability ReadTree needs: reading a
// framed payload back out by hash, with an expected kind check.
// storage.ObjectStore implements it.
type Reader interface {
	ReadObject(h Hash, expected Kind) ([]byte, error)
}

// ReadTree recursively materializes the tree rooted at root into a flat
// Snapshot (§4.4). The zero hash (no commits yet) yields an empty
// snapshot without touching the store.
func ReadTree(r Reader, root Hash) (Snapshot, error) {
	snap := Snapshot{}
	if root.IsZero() {
		return snap, nil
	}
	if err := readTreeInto(r, root, "", snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func readTreeInto(r Reader, h Hash, prefix string, into Snapshot) error {
	payload, err := r.ReadObject(h, KindTree)
	if err != nil {
		return err
	}

	t, err := DecodeTree(payload)
	if err != nil {
		return err
	}

	for _, e := range t.Entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}

		switch e.Kind {
		case KindBlob:
			into[path] = Entry{Mode: e.Mode, Hash: e.Hash}
		case KindTree:
			if err := readTreeInto(r, e.Hash, path, into); err != nil {
				return err
			}
		}
	}

	return nil
}
