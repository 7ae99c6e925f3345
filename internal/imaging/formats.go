// Package imaging reports which image formats this build can decode and so
// could thumbnail. The table is built on first use and never changes.
package imaging

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format is one decodable image format.
type Format struct {
	Name       string
	Mime       string
	Extensions []string
}

// candidates lists formats that may be linked in. Only those with a
// registered decoder end up in the table.
var candidates = []Format{
	{Name: "jpeg", Mime: "image/jpeg", Extensions: []string{".jpg", ".jpeg", ".jpe"}},
	{Name: "png", Mime: "image/png", Extensions: []string{".png"}},
	{Name: "gif", Mime: "image/gif", Extensions: []string{".gif"}},
}

// samples are the smallest headers each decoder recognises.
var samples = map[string]string{
	"jpeg": "\xff\xd8",
	"png":  "\x89PNG\r\n\x1a\n",
	"gif":  "GIF89a",
}

type table struct {
	formats    []Format
	byExt      map[string]Format
	extensions []string
}

var (
	once    sync.Once
	formats *table
)

func load() *table {
	once.Do(func() {
		t := &table{byExt: make(map[string]Format)}
		for _, f := range candidates {
			if !registered(f.Name) {
				continue
			}
			t.formats = append(t.formats, f)
			for _, ext := range f.Extensions {
				t.byExt[ext] = f
				t.extensions = append(t.extensions, ext)
			}
		}
		sort.Strings(t.extensions)
		formats = t
	})
	return formats
}

// registered probes image.DecodeConfig with a format's magic bytes. A
// registered decoder claims the sample even though it then fails to parse it.
func registered(name string) bool {
	sample, ok := samples[name]
	if !ok {
		return false
	}
	_, format, _ := image.DecodeConfig(strings.NewReader(sample))
	return format == name
}

// Formats returns the decodable formats.
func Formats() []Format {
	t := load()
	out := make([]Format, len(t.formats))
	copy(out, t.formats)
	return out
}

// SupportedExtensions returns the sorted, dot-prefixed extensions.
func SupportedExtensions() []string {
	t := load()
	out := make([]string, len(t.extensions))
	copy(out, t.extensions)
	return out
}

// CanThumbnail reports whether name has a decodable image extension.
func CanThumbnail(name string) bool {
	_, ok := load().byExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MimeTypes returns the MIME types of the decodable formats.
func MimeTypes() []string {
	t := load()
	out := make([]string, 0, len(t.formats))
	for _, f := range t.formats {
		out = append(out, f.Mime)
	}
	return out
}
