package connector

import (
	"html"
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/finder/internal/volume/entry"
)

// APIVersion is the protocol version announced on init.
const APIVersion = "2.0"

// record is the wire form of an entry. Flags are 0 or 1.
type record struct {
	Name     string `json:"name"`
	Hash     string `json:"hash"`
	PHash    string `json:"phash,omitempty"`
	Mime     string `json:"mime"`
	TS       int64  `json:"ts"`
	Size     int64  `json:"size"`
	Dirs     int    `json:"dirs,omitempty"`
	Read     int    `json:"read"`
	Write    int    `json:"write"`
	Locked   int    `json:"locked"`
	VolumeID string `json:"volumeid,omitempty"`
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func base(e entry.Entry) record {
	return record{
		Name:     e.Name,
		Hash:     e.Token,
		PHash:    e.ParentToken,
		TS:       e.ModifiedAt.Unix(),
		Read:     flag(e.Readable),
		Write:    flag(e.Writable),
		Locked:   flag(e.Locked),
		VolumeID: e.VolumeID,
	}
}

func dirRecord(d entry.Directory) record {
	r := base(d.Entry)
	r.Mime = entry.MimeDirectory
	r.Dirs = flag(d.HasChildren)
	return r
}

func fileRecord(f entry.File) record {
	r := base(f.Entry)
	r.Mime = f.Mime
	r.Size = f.Size
	return r
}

// collector accumulates records without duplicates.
type collector struct {
	seen    map[string]bool
	records []record
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool), records: []record{}}
}

func (c *collector) add(r record) {
	if c.seen[r.Hash] {
		return
	}
	c.seen[r.Hash] = true
	c.records = append(c.records, r)
}

func (c *collector) dirs(list []entry.Directory) {
	for _, d := range list {
		c.add(dirRecord(d))
	}
}

func (c *collector) files(list []entry.File) {
	for _, f := range list {
		c.add(fileRecord(f))
	}
}

var namePolicy = bluemonday.StrictPolicy()

// safeName reports whether name survives HTML sanitising unchanged. Names the
// client would render as markup are refused.
func safeName(name string) bool {
	return html.UnescapeString(namePolicy.Sanitize(name)) == name
}

// sizeLimit renders a byte ceiling the way the client parses it: "16M", "512K".
func sizeLimit(n int64) string {
	switch {
	case n <= 0:
		return "0"
	case n%(1<<30) == 0:
		return strconv.FormatInt(n>>30, 10) + "G"
	case n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + "M"
	case n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}
