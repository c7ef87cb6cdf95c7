package worktree

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gud-vcs/gud/index"
	"github.com/gud-vcs/gud/object"
	"github.com/gud-vcs/gud/refstore"
	"github.com/gud-vcs/gud/storage"
)

func writeFile(t *testing.T, fs billy.Filesystem, path string, content string) {
	t.Helper()
	if dir := parentDir(path); dir != "" {
		require.NoError(t, fs.MkdirAll(dir, 0o755))
	}
	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}

func hashBlob(t *testing.T, content string) object.Hash {
	t.Helper()
	return object.Sum(object.Frame(object.KindBlob, []byte(content)))
}

func TestStatusReportsUnstagedAdded(t *testing.T) {
	wt := memfs.New()
	writeFile(t, wt, "a.txt", "hello\n")

	idx := index.New()
	status, err := Status(object.Snapshot{}, idx, wt, ".gud", NoIgnore)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, status.UnstagedAdded)
	assert.Empty(t, status.StagedAdded)
}

func TestStatusReportsShallowestUntrackedDirectory(t *testing.T) {
	wt := memfs.New()
	writeFile(t, wt, "dir/sub/file.txt", "content\n")

	idx := index.New()
	status, err := Status(object.Snapshot{}, idx, wt, ".gud", NoIgnore)
	require.NoError(t, err)

	assert.Equal(t, []string{"dir/"}, status.UnstagedAdded)
}

func TestStatusReportsUnstagedModifiedAndDeleted(t *testing.T) {
	wt := memfs.New()
	writeFile(t, wt, "a.txt", "changed\n")

	idx := index.New()
	idx.Set("a.txt", object.Entry{Mode: 0o100644, Hash: hashBlob(t, "original\n")})
	idx.Set("gone.txt", object.Entry{Mode: 0o100644, Hash: hashBlob(t, "bye\n")})

	status, err := Status(object.Snapshot{}, idx, wt, ".gud", NoIgnore)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, status.UnstagedModified)
	assert.Equal(t, []string{"gone.txt"}, status.UnstagedDeleted)
}

func TestStatusStagedSets(t *testing.T) {
	wt := memfs.New()

	head := object.Snapshot{
		"kept.txt":    {Mode: 0o100644, Hash: hashBlob(t, "kept\n")},
		"removed.txt": {Mode: 0o100644, Hash: hashBlob(t, "removed\n")},
	}

	idx := index.New()
	idx.Set("kept.txt", head["kept.txt"])
	idx.Set("added.txt", object.Entry{Mode: 0o100644, Hash: hashBlob(t, "added\n")})

	status, err := Status(head, idx, wt, ".gud", NoIgnore)
	require.NoError(t, err)

	assert.Equal(t, []string{"added.txt"}, status.StagedAdded)
	assert.Equal(t, []string{"removed.txt"}, status.StagedDeleted)
}

func TestStatusSkipsAdminDirAndIgnored(t *testing.T) {
	wt := memfs.New()
	writeFile(t, wt, ".gud/index", "should not appear")
	writeFile(t, wt, "ignored.log", "noise")

	idx := index.New()
	status, err := Status(object.Snapshot{}, idx, wt, ".gud", matchFunc(func(p string) bool {
		return p == "ignored.log"
	}))
	require.NoError(t, err)

	assert.Empty(t, status.UnstagedAdded)
}

type matchFunc func(string) bool

func (f matchFunc) Match(path string) bool { return f(path) }

func TestDirty(t *testing.T) {
	assert.False(t, Dirty(&StatusResult{}))
	assert.True(t, Dirty(&StatusResult{StagedAdded: []string{"a"}}))
	assert.True(t, Dirty(&StatusResult{UnstagedModified: []string{"a"}}))
	assert.True(t, Dirty(&StatusResult{UnstagedDeleted: []string{"a"}}))
}

func TestCheckoutCreatesModifiesDeletesAndSetsDetached(t *testing.T) {
	wt := memfs.New()
	admin := memfs.New()
	objects := storage.NewObjectStore(memfs.New())
	refs := refstore.New(admin)
	require.NoError(t, refs.Init())

	writeFile(t, wt, "stale.txt", "will be removed\n")
	writeFile(t, wt, "change.txt", "old content\n")

	idx := index.New()
	idx.Set("stale.txt", object.Entry{Mode: 0o100644, Hash: hashBlob(t, "will be removed\n")})
	idx.Set("change.txt", object.Entry{Mode: 0o100644, Hash: hashBlob(t, "old content\n")})

	newHash, err := objects.WriteObject(object.KindBlob, []byte("new content\n"))
	require.NoError(t, err)
	addedHash, err := objects.WriteObject(object.KindBlob, []byte("brand new\n"))
	require.NoError(t, err)

	target := object.Snapshot{
		"change.txt": {Mode: 0o100644, Hash: newHash},
		"added.txt":  {Mode: 0o100644, Hash: addedHash},
	}
	targetHash := object.MustHash("000000000000000000000000000000000000000a")

	result, err := Checkout(refs, idx, wt, objects, targetHash, target)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"added.txt"}, result.Created)
	assert.ElementsMatch(t, []string{"change.txt"}, result.Modified)
	assert.ElementsMatch(t, []string{"stale.txt"}, result.Deleted)

	_, err = wt.Stat("stale.txt")
	assert.True(t, err != nil)

	f, err := wt.Open("change.txt")
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	assert.Equal(t, "new content\n", string(buf[:n]))
	f.Close()

	detachedHash, detached, err := refs.Detached()
	require.NoError(t, err)
	assert.True(t, detached)
	assert.Equal(t, targetHash, detachedHash)

	assert.Equal(t, target, idx.Snapshot())
}
