package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	framed := Frame(KindBlob, []byte("hello\n"))
	assert.Equal(t, "blob 6\x00hello\n", string(framed))

	kind, payload, err := ParseFrame(framed)
	require.NoError(t, err)
	assert.Equal(t, KindBlob, kind)
	assert.Equal(t, []byte("hello\n"), payload)
}

func TestParseFrameMalformed(t *testing.T) {
	cases := map[string][]byte{
		"no NUL":        []byte("blob 6hello\n"),
		"no separator":  []byte("blob6\x00hello\n"),
		"unknown kind":  []byte("widget 6\x00hello\n"),
		"bad size":      []byte("blob six\x00hello\n"),
		"size mismatch": []byte("blob 99\x00hello\n"),
	}
	for name, framed := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseFrame(framed)
			assert.ErrorIs(t, err, ErrMalformedFrame)
		})
	}
}

func TestSumMatchesKnownBlobHash(t *testing.T) {
	// "hello\n" is a canonical content-addressing fixture.
	framed := Frame(KindBlob, []byte("hello\n"))
	got := Sum(framed)
	assert.Equal(t, "f572d396fae9206628714fb2ce00f72e94f2258f", got.String())
}

func TestHashRoundTrip(t *testing.T) {
	h := MustHash("f572d396fae9206628714fb2ce00f72e94f2258f")
	assert.False(t, h.IsZero())
	assert.Equal(t, "f5", h.Dir())
	assert.Equal(t, "72d396fae9206628714fb2ce00f72e94f2258f", h.File())

	parsed, err := NewHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestNewHashMalformed(t *testing.T) {
	_, err := NewHash("not-a-hash")
	assert.ErrorIs(t, err, ErrMalformedHash)

	_, err = NewHash("zz72d396fae9206628714fb2ce00f72e94f2258")
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestBlobEncodeDecode(t *testing.T) {
	b := &Blob{Content: []byte("hello\n")}
	decoded := DecodeBlob(b.Encode())
	assert.Equal(t, b.Content, decoded.Content)
}

func TestTreeEncodeDecodeRoundTrip(t *testing.T) {
	tree := &Tree{Entries: []TreeEntry{
		{Mode: 0o100644, Kind: KindBlob, Hash: MustHash("f572d396fae9206628714fb2ce00f72e94f2258f"), Name: "a.txt"},
		{Mode: 0o040000, Kind: KindTree, Hash: MustHash("000000000000000000000000000000000000000a"), Name: "sub"},
	}}

	decoded, err := DecodeTree(tree.Encode())
	require.NoError(t, err)
	assert.Equal(t, tree.Entries, decoded.Entries)
}

func TestDecodeTreeMalformed(t *testing.T) {
	cases := []string{
		"100644\tblob\tf572d396fae9206628714fb2ce00f72e94f2258f\n",         // missing field
		"100644\twidget\tf572d396fae9206628714fb2ce00f72e94f2258f\tx\n",   // bad kind
		"xyz\tblob\tf572d396fae9206628714fb2ce00f72e94f2258f\tx\n",        // bad mode
		"100644\tblob\tnothex\tx\n",                                      // bad hash
	}
	for _, payload := range cases {
		_, err := DecodeTree([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedTree)
	}
}

func TestDecodeTreeEmptyPayload(t *testing.T) {
	tree, err := DecodeTree(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Entries)
}

func TestCommitEncodeDecodeRoundTrip(t *testing.T) {
	parent := MustHash("000000000000000000000000000000000000000a")
	c := &Commit{
		TreeHash:   MustHash("f572d396fae9206628714fb2ce00f72e94f2258f"),
		ParentHash: &parent,
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Timestamp:  "2026-07-31T00:00:00Z",
		Message:    "initial commit",
	}

	decoded, err := DecodeCommit(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c.TreeHash, decoded.TreeHash)
	require.NotNil(t, decoded.ParentHash)
	assert.Equal(t, *c.ParentHash, *decoded.ParentHash)
	assert.Equal(t, c.Name, decoded.Name)
	assert.Equal(t, c.Email, decoded.Email)
	assert.Equal(t, c.Timestamp, decoded.Timestamp)
	assert.Equal(t, c.Message, decoded.Message)
}

func TestCommitEncodeDecodeNoParent(t *testing.T) {
	c := &Commit{
		TreeHash: MustHash("f572d396fae9206628714fb2ce00f72e94f2258f"),
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Timestamp: "2026-07-31T00:00:00Z",
		Message:  "root commit",
	}

	decoded, err := DecodeCommit(c.Encode())
	require.NoError(t, err)
	assert.Nil(t, decoded.ParentHash)
}

func TestDecodeCommitMalformed(t *testing.T) {
	cases := []string{
		"tree f572d396fae9206628714fb2ce00f72e94f2258f\n\nmsg",                            // no tab
		"tree\tf572d396fae9206628714fb2ce00f72e94f2258f\ncommitter\ta b (1)\nmsg",         // no blank line
		"committer\tAda ada@example.com (1)\n\nmsg",                                      // missing tree
		"tree\tf572d396fae9206628714fb2ce00f72e94f2258f\n\nmsg",                           // missing committer
		"tree\tf572d396fae9206628714fb2ce00f72e94f2258f\nbogus\tx\ncommitter\tAda a@b.c (1)\n\nmsg", // unknown key
	}
	for _, payload := range cases {
		_, err := DecodeCommit([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedCommit)
	}
}

func TestDiff(t *testing.T) {
	a := Snapshot{
		"keep.txt":    {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000a")},
		"removed.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000b")},
		"changed.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000c")},
	}
	b := Snapshot{
		"keep.txt":    {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000a")},
		"changed.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000d")},
		"added.txt":   {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000e")},
	}

	added, removed, modified := Diff(a, b)
	assert.ElementsMatch(t, []string{"added.txt"}, added)
	assert.ElementsMatch(t, []string{"removed.txt"}, removed)
	assert.ElementsMatch(t, []string{"changed.txt"}, modified)
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{"a": {Mode: 1, Hash: MustHash("000000000000000000000000000000000000000a")}}
	c := s.Clone()
	c["a"] = Entry{Mode: 2}
	assert.NotEqual(t, s["a"], c["a"])
}

// fakeStore is an in-memory Writer+Reader for exercising BuildTree/ReadTree
// without the storage package.
type fakeStore struct {
	objects map[Hash][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[Hash][]byte{}}
}

func (f *fakeStore) WriteObject(kind Kind, payload []byte) (Hash, error) {
	h := Sum(Frame(kind, payload))
	f.objects[h] = payload
	return h, nil
}

func (f *fakeStore) ReadObject(h Hash, expected Kind) ([]byte, error) {
	payload, ok := f.objects[h]
	if !ok {
		return nil, ErrMalformedTree
	}
	_ = expected
	return payload, nil
}

func TestBuildTreeReadTreeRoundTrip(t *testing.T) {
	store := newFakeStore()
	snap := Snapshot{
		"a.txt":        {Mode: 0o100644, Hash: MustHash("f572d396fae9206628714fb2ce00f72e94f2258f")},
		"dir/b.txt":    {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000a")},
		"dir/sub/c.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000b")},
	}

	root, err := BuildTree(store, snap)
	require.NoError(t, err)

	got, err := ReadTree(store, root)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestBuildTreeDeterministic(t *testing.T) {
	storeA := newFakeStore()
	storeB := newFakeStore()
	snap := Snapshot{
		"z.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000a")},
		"a.txt": {Mode: 0o100644, Hash: MustHash("000000000000000000000000000000000000000b")},
	}

	hashA, err := BuildTree(storeA, snap)
	require.NoError(t, err)
	hashB, err := BuildTree(storeB, snap)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
}

func TestReadTreeZeroHash(t *testing.T) {
	snap, err := ReadTree(newFakeStore(), ZeroHash)
	require.NoError(t, err)
	assert.Empty(t, snap)
}
