package sandbox

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/finder/internal/volume/codec"
)

func newResolver(t *testing.T, root string, foldCase bool) *Resolver {
	t.Helper()
	r, err := New("l1_", root, codec.Base64{}, foldCase)
	require.NoError(t, err)
	return r
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "/data", codec.Base64{}, false)
	assert.Error(t, err)

	_, err = New("l1_", "relative/dir", codec.Base64{}, false)
	assert.Error(t, err)

	_, err = New("l1_", "/data", nil, false)
	assert.Error(t, err)

	r, err := New("l1_", "/data/files/", codec.Base64{}, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/data/files"), r.Root())
}

func TestTokenRoundTrip(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	tests := []struct {
		name string
		abs  string
	}{
		{"root", "/data/files"},
		{"child", "/data/files/Photos"},
		{"nested", "/data/files/Photos/2024/beach.jpg"},
		{"unicode", "/data/files/Документы/ü.txt"},
		{"spaces", "/data/files/My Folder/a b.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := r.ToToken(tt.abs)
			require.NoError(t, err)
			assert.True(t, r.Owns(tok))

			back, err := r.ToAbsolute(tok)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.abs), back)
		})
	}
}

func TestRootToken(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	tok, err := r.ToToken("/data/files")
	require.NoError(t, err)
	assert.Equal(t, "l1_Lw", tok)
	assert.Equal(t, tok, r.RootToken())
}

func TestTokenFormat(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	tok, err := r.ToToken("/data/files/Photos")
	require.NoError(t, err)
	assert.Equal(t, "l1_"+codec.Base64{}.Encode("Photos"), tok)
}

func TestToAbsoluteRejectsEscape(t *testing.T) {
	r := newResolver(t, "/data/files", false)
	enc := codec.Base64{}

	for _, rel := range []string{"..", "../etc/passwd", "a/../../etc", "../files2/x"} {
		t.Run(rel, func(t *testing.T) {
			_, err := r.ToAbsolute("l1_" + enc.Encode(rel))
			assert.ErrorIs(t, err, ErrOutsideRoot)
		})
	}
}

func TestToAbsoluteCollapsesInnerDots(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	abs, err := r.ToAbsolute("l1_" + codec.Base64{}.Encode("a/../b"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/data/files/b"), abs)
}

func TestToAbsoluteForeignPrefix(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	_, err := r.ToAbsolute("l2_Lw")
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = r.ToAbsolute("l1")
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestToAbsolutePrefixIgnoresCase(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	abs, err := r.ToAbsolute("L1_Lw")
	require.NoError(t, err)
	assert.Equal(t, r.Root(), abs)
}

func TestToAbsoluteMalformed(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	for _, tok := range []string{"l1_", "l1_!!!", "l1_YQ"} {
		_, err := r.ToAbsolute(tok)
		assert.ErrorIs(t, err, ErrMalformed, tok)
	}
}

func TestContainsBoundary(t *testing.T) {
	r := newResolver(t, "/data/root", false)

	tests := []struct {
		abs  string
		want bool
	}{
		{"/data/root", true},
		{"/data/root/", true},
		{"/data/root/a", true},
		{"/data/root/a/b/c", true},
		{"/data/root2", false},
		{"/data/root2/a", false},
		{"/data/roo", false},
		{"/data", false},
		{"/data/root/../other", false},
		{"/DATA/root/a", false},
	}

	for _, tt := range tests {
		t.Run(tt.abs, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.abs))
		})
	}
}

func TestContainsFoldCase(t *testing.T) {
	r := newResolver(t, "/data/root", true)

	assert.True(t, r.Contains("/DATA/Root/a"))
	assert.False(t, r.Contains("/DATA/Root2/a"))
}

func TestContainsFilesystemRoot(t *testing.T) {
	r := newResolver(t, "/", false)

	assert.True(t, r.Contains("/"))
	assert.True(t, r.Contains("/etc"))

	tok, err := r.ToToken("/etc/hosts")
	require.NoError(t, err)
	abs, err := r.ToAbsolute(tok)
	require.NoError(t, err)
	assert.Equal(t, "/etc/hosts", abs)
}

func TestToTokenOutside(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	_, err := r.ToToken("/data/other")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = r.ToToken("/data/files2")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestRel(t *testing.T) {
	r := newResolver(t, "/data/files", false)

	rel, err := r.Rel("/data/files")
	require.NoError(t, err)
	assert.Equal(t, "", rel)

	rel, err = r.Rel("/data/files/a/b/")
	require.NoError(t, err)
	assert.Equal(t, "a/b", rel)

	_, err = r.Rel("/data")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}
