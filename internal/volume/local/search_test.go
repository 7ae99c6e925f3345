package local

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/finder/internal/volume"
)

func buildSearchTree(t *testing.T, root string) {
	t.Helper()
	writeFile(t, root, "Report-2024.pdf", "r")
	writeFile(t, root, "docs/report-draft.txt", "d")
	writeFile(t, root, "docs/notes.md", "n")
	writeFile(t, root, "docs/reports/q1.csv", "q")
	writeFile(t, root, ".cache/report.tmp", "c")
	writeFile(t, root, "vendor/report.go", "v")
}

func TestSearchSubstring(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.HiddenGlobs = []string{"vendor"} })
	buildSearchTree(t, root)

	dirs, files, err := v.Search(context.Background(), v.RootToken(), "REPORT")
	require.NoError(t, err)

	assert.Equal(t, []string{"reports"}, names(dirs))
	var got []string
	for _, f := range files {
		got = append(got, f.Name)
	}
	assert.ElementsMatch(t, []string{"Report-2024.pdf", "report-draft.txt"}, got)
}

func TestSearchGlob(t *testing.T) {
	v, root := newTestVolume(t)
	buildSearchTree(t, root)

	dirs, files, err := v.Search(context.Background(), v.RootToken(), "*.csv")
	require.NoError(t, err)
	assert.Empty(t, dirs)
	require.Len(t, files, 1)
	assert.Equal(t, "q1.csv", files[0].Name)
	assert.Equal(t, tokenFor(v, "docs/reports"), files[0].ParentToken)
}

func TestSearchScopedToDirectory(t *testing.T) {
	v, root := newTestVolume(t)
	buildSearchTree(t, root)

	_, files, err := v.Search(context.Background(), tokenFor(v, "docs"), "report")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report-draft.txt", files[0].Name)
}

func TestSearchLimit(t *testing.T) {
	v, root := newTestVolume(t, func(o *Options) { o.SearchLimit = 3 })
	for i := 0; i < 10; i++ {
		writeFile(t, root, fmt.Sprintf("match-%d.txt", i), "m")
	}

	_, files, err := v.Search(context.Background(), v.RootToken(), "match")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestSearchErrors(t *testing.T) {
	v, root := newTestVolume(t)
	buildSearchTree(t, root)

	_, _, err := v.Search(context.Background(), tokenFor(v, "missing"), "x")
	assert.ErrorIs(t, err, volume.ErrNotFound)

	dirs, files, err := v.Search(context.Background(), v.RootToken(), "   ")
	require.NoError(t, err)
	assert.Empty(t, dirs)
	assert.Empty(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = v.Search(ctx, v.RootToken(), "report")
	assert.ErrorIs(t, err, context.Canceled)
}
