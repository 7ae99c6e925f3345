package local

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/codec"
)

func TestDirectoryLookup(t *testing.T) {
	v, root := newTestVolume(t)
	mkdirs(t, root, "a/b")

	d, err := v.Directory(tokenFor(v, "a"))
	require.NoError(t, err)
	assert.Equal(t, "a", d.Name)
	assert.Equal(t, v.RootToken(), d.ParentToken)
	assert.True(t, d.HasChildren)
	assert.False(t, d.Locked)

	d, err = v.Directory(tokenFor(v, "a/b"))
	require.NoError(t, err)
	assert.Equal(t, tokenFor(v, "a"), d.ParentToken)
	assert.False(t, d.HasChildren)

	d, err = v.Directory(v.RootToken())
	require.NoError(t, err)
	assert.Equal(t, "Home", d.Name)
}

func TestLookupIndistinguishableMisses(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.HiddenGlobs = []string{"private"} })
	mkdirs(t, root, ".git", "private", "visible")
	writeFile(t, root, "file.txt", "f")
	writeFile(t, root, ".git/config", "c")
	writeFile(t, root, "private/note.txt", "n")

	outside := filepath.Dir(root)
	writeFile(t, outside, "secret.txt", "s")

	enc := codec.Base64{}
	tokens := map[string]string{
		"missing":        tokenFor(v, "missing"),
		"escape parent":  "l1_" + enc.Encode(".."),
		"escape sibling": "l1_" + enc.Encode("../secret.txt"),
		"escape deep":    "l1_" + enc.Encode("visible/../../secret.txt"),
		"foreign volume": "l9_" + enc.Encode("visible"),
		"garbage":        "l1_%%%",
		"root alias":     "l1_Lx",
		"trailing slash": "l1_" + base64.RawURLEncoding.EncodeToString([]byte("/visible/")),
		"empty":          "",
		"dot dir":        tokenFor(v, ".git"),
		"inside dot dir": tokenFor(v, ".git/config"),
		"glob hidden":    tokenFor(v, "private"),
		"in glob hidden": tokenFor(v, "private/note.txt"),
	}

	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := v.Directory(tok)
			assert.Equal(t, volume.ErrNotFound, err)
		})
	}

	for name, tok := range tokens {
		t.Run("file "+name, func(t *testing.T) {
			_, err := v.File(tok)
			assert.Equal(t, volume.ErrNotFound, err)
		})
	}

	_, err := v.File(tokenFor(v, "visible"))
	assert.Equal(t, volume.ErrNotFound, err)
	_, err = v.Directory(tokenFor(v, "file.txt"))
	assert.Equal(t, volume.ErrNotFound, err)
}

func TestSymlinksAreNeverExposed(t *testing.T) {
	v, root := newTestVolume(t)
	mkdirs(t, root, "target")
	writeFile(t, root, "target/data.txt", "d")
	outside := t.TempDir()
	writeFile(t, outside, "loot.txt", "l")

	links := map[string]string{
		"inner-dir":  filepath.Join(root, "target"),
		"inner-file": filepath.Join(root, "target", "data.txt"),
		"escape":     outside,
	}
	for name, dest := range links {
		if err := os.Symlink(dest, filepath.Join(root, name)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	for name := range links {
		_, err := v.Directory(tokenFor(v, name))
		assert.Equal(t, volume.ErrNotFound, err, name)
		_, err = v.File(tokenFor(v, name))
		assert.Equal(t, volume.ErrNotFound, err, name)
	}

	_, err := v.File(tokenFor(v, "escape/loot.txt"))
	assert.Equal(t, volume.ErrNotFound, err)
	assert.Empty(t, v.Files(tokenFor(v, "escape")))

	assert.Empty(t, v.Files(v.RootToken()))
	tree := v.Subdirectories(v.RootToken(), volume.Depth(3))
	require.Len(t, tree, 1)
	assert.Equal(t, "target", tree[0].Name)
}

func TestFileLookup(t *testing.T) {
	v, root := newTestVolume(t)
	writeFile(t, root, "docs/report.pdf", "%PDF-1.4")

	f, err := v.File(tokenFor(v, "docs/report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", f.Name)
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, "application/pdf", f.Mime)
	assert.Equal(t, tokenFor(v, "docs"), f.ParentToken)
	assert.True(t, f.Readable)
	assert.True(t, f.Writable)
}

func TestFileSniffing(t *testing.T) {
	png := "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00"

	v, root := newTestVolume(t, func(o *Options) { o.SniffContent = true })
	writeFile(t, root, "picture", png)

	f, err := v.File(tokenFor(v, "picture"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.Mime)

	plain, root2 := newTestVolume(t)
	writeFile(t, root2, "picture", png)
	f, err = plain.File(tokenFor(plain, "picture"))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", f.Mime)
}

func TestFiles(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.HiddenGlobs = []string{"*.bak"} })
	writeFile(t, root, "one.txt", "1")
	writeFile(t, root, "two.txt", "2")
	writeFile(t, root, ".env", "e")
	writeFile(t, root, "old.bak", "b")
	writeFile(t, root, "sub/nested.txt", "n")

	files := v.Files(v.RootToken())
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Equal(t, v.RootToken(), f.ParentToken)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"one.txt", "two.txt"}, names)

	assert.Empty(t, v.Files(tokenFor(v, "missing")))
	assert.Empty(t, v.Files(tokenFor(v, "one.txt")))
	assert.Empty(t, v.Files("l1_"+codec.Base64{}.Encode("..")))
}

func TestPathToRoot(t *testing.T) {
	v, root := newTestVolume(t)
	writeFile(t, root, "a/b/c/file.txt", "f")

	assert.Equal(t, "", v.PathToRoot(v.RootToken()))
	assert.Equal(t, "a", v.PathToRoot(tokenFor(v, "a")))
	assert.Equal(t, "a/b/c", v.PathToRoot(tokenFor(v, "a/b/c")))
	assert.Equal(t, "a/b/c/file.txt", v.PathToRoot(tokenFor(v, "a/b/c/file.txt")))
	assert.Equal(t, "", v.PathToRoot(tokenFor(v, "missing")))
	assert.Equal(t, "", v.PathToRoot("bogus"))
}

func TestPathToRootStopsAtInvalidAncestor(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.HiddenGlobs = []string{"a/b"} })
	mkdirs(t, root, "a/b/c")

	assert.Equal(t, "", v.PathToRoot(tokenFor(v, "a/b/c")))
	assert.Equal(t, "a", v.PathToRoot(tokenFor(v, "a")))
}

func TestTokensCarryVolumePrefix(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.ID = "vol7_" })
	writeFile(t, root, "x/y/z.txt", "z")

	check := func(tok string) {
		assert.True(t, strings.HasPrefix(tok, "vol7_"), tok)
	}

	r, err := v.Root()
	require.NoError(t, err)
	check(r.Token)
	for _, d := range v.Subdirectories(r.Token, volume.Depth(5)) {
		check(d.Token)
		check(d.ParentToken)
		for _, f := range v.Files(d.Token) {
			check(f.Token)
			check(f.ParentToken)
		}
	}
}
