// Package storage implements the on-disk object store: zlib-compressed,
// content-addressed loose objects under a two-character fan-out directory
// layout (§4.1, §6), read and written through a billy.Filesystem so the
// same code path serves a real repository (osfs) and an in-memory one
// (memfs) in tests.
package storage

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"

	"github.com/gud-vcs/gud/object"
)

// CompressionLevel is the fixed zlib level used for every write (§4.1
// step 5: "a fixed compression level (configurable constant)").
const CompressionLevel = zlib.BestSpeed

var (
	// ErrObjectMissing is returned when a referenced hash has no object
	// on disk.
	ErrObjectMissing = errors.New("gud: object-missing")
	// ErrObjectMalformed is returned when a stored object's framed header
	// cannot be parsed, or its declared size disagrees with its payload.
	ErrObjectMalformed = errors.New("gud: object-malformed")
	// ErrObjectKindMismatch is returned when a caller requests a specific
	// kind and the stored object is a different one.
	ErrObjectKindMismatch = errors.New("gud: object-kind-mismatch")
	// ErrAmbiguousPrefix is returned when a short hash prefix matches more
	// than one object.
	ErrAmbiguousPrefix = errors.New("gud: ambiguous-prefix")
)

// ObjectStore is the content-addressed object store rooted at a
// `objects/` directory.
type ObjectStore struct {
	fs billy.Filesystem
}

// NewObjectStore returns an ObjectStore persisting into fs, which should
// already be rooted at the repository's `objects/` directory (e.g. via
// admin.Chroot("objects")).
func NewObjectStore(fs billy.Filesystem) *ObjectStore {
	return &ObjectStore{fs: fs}
}

// WriteObject frames and compresses payload, and writes it under its
// content hash's fan-out path unless an object with that hash already
// exists (§4.1 steps 1-5: content-addressed deduplication).
func (s *ObjectStore) WriteObject(kind object.Kind, payload []byte) (object.Hash, error) {
	framed := object.Frame(kind, payload)
	hash := object.Sum(framed)

	exists, err := s.Has(hash)
	if err != nil {
		return object.Hash{}, err
	}
	if exists {
		return hash, nil
	}

	dir := hash.Dir()
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return object.Hash{}, fmt.Errorf("gud: creating fan-out directory %s: %w", dir, err)
	}

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, CompressionLevel)
	if err != nil {
		return object.Hash{}, err
	}
	if _, err := zw.Write(framed); err != nil {
		return object.Hash{}, err
	}
	if err := zw.Close(); err != nil {
		return object.Hash{}, err
	}

	path := s.fs.Join(dir, hash.File())
	f, err := s.fs.Create(path)
	if err != nil {
		return object.Hash{}, fmt.Errorf("gud: writing object %s: %w", hash, err)
	}
	defer f.Close()

	if _, err := f.Write(compressed.Bytes()); err != nil {
		return object.Hash{}, fmt.Errorf("gud: writing object %s: %w", hash, err)
	}

	return hash, nil
}

// Has reports whether an object with the given hash already exists.
func (s *ObjectStore) Has(h object.Hash) (bool, error) {
	_, err := s.fs.Stat(s.fs.Join(h.Dir(), h.File()))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadObject reads and decompresses the object at h, validating its frame
// and, when expected is non-zero, its kind (§4.1 steps 1-6).
func (s *ObjectStore) ReadObject(h object.Hash, expected object.Kind) ([]byte, error) {
	kind, payload, err := s.ReadAny(h)
	if err != nil {
		return nil, err
	}
	if expected != 0 && kind != expected {
		return nil, fmt.Errorf("gud: object %s is a %s, want %s: %w", h, kind, expected, ErrObjectKindMismatch)
	}
	return payload, nil
}

// ReadAny reads and decompresses the object at h without checking its
// kind, returning the kind alongside the payload.
func (s *ObjectStore) ReadAny(h object.Hash) (object.Kind, []byte, error) {
	path := s.fs.Join(h.Dir(), h.File())
	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, fmt.Errorf("gud: %s: %w", h, ErrObjectMissing)
		}
		return 0, nil, err
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return 0, nil, fmt.Errorf("gud: decompressing object %s: %w", h, ErrObjectMalformed)
	}
	defer zr.Close()

	framed, err := io.ReadAll(zr)
	if err != nil {
		return 0, nil, fmt.Errorf("gud: decompressing object %s: %w", h, ErrObjectMalformed)
	}

	kind, payload, err := object.ParseFrame(framed)
	if err != nil {
		return 0, nil, fmt.Errorf("gud: object %s: %w: %v", h, ErrObjectMalformed, err)
	}

	return kind, payload, nil
}

// Resolve expands a hex hash prefix to the single matching object hash,
// failing with ErrObjectMissing if nothing matches and ErrAmbiguousPrefix
// if more than one object shares the prefix. This ports
// Repository.find_commit's fan-out scan from the original source.
func (s *ObjectStore) Resolve(prefix string) (object.Hash, error) {
	if len(prefix) == object.HexSize {
		h, err := object.NewHash(prefix)
		if err != nil {
			return object.Hash{}, err
		}
		exists, err := s.Has(h)
		if err != nil {
			return object.Hash{}, err
		}
		if !exists {
			return object.Hash{}, fmt.Errorf("gud: no object matches %q: %w", prefix, ErrObjectMissing)
		}
		return h, nil
	}
	if len(prefix) < 2 {
		return object.Hash{}, fmt.Errorf("gud: prefix %q too short: %w", prefix, ErrObjectMissing)
	}

	dir, rest := prefix[:2], prefix[2:]
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return object.Hash{}, fmt.Errorf("gud: no object matches %q: %w", prefix, ErrObjectMissing)
		}
		return object.Hash{}, err
	}

	var matches []string
	for _, e := range entries {
		if len(e.Name()) >= len(rest) && e.Name()[:len(rest)] == rest {
			matches = append(matches, dir+e.Name())
		}
	}

	switch len(matches) {
	case 0:
		return object.Hash{}, fmt.Errorf("gud: no object matches %q: %w", prefix, ErrObjectMissing)
	case 1:
		return object.NewHash(matches[0])
	default:
		return object.Hash{}, fmt.Errorf("gud: %q matches %d objects: %w", prefix, len(matches), ErrAmbiguousPrefix)
	}
}
