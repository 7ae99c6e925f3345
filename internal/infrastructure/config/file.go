package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// volumesFile is the document shape of VOLUMES_FILE.
type volumesFile struct {
	Volumes []volumeEntry `yaml:"volumes" toml:"volumes"`
}

// volumeEntry is one declared volume. Tunables are pointers so an explicit
// zero, such as max_tree_depth: 0, is told apart from an absent key.
type volumeEntry struct {
	ID            string    `yaml:"id" toml:"id"`
	Root          string    `yaml:"root" toml:"root"`
	Label         string    `yaml:"label" toml:"label"`
	MaxTreeDepth  *int      `yaml:"max_tree_depth" toml:"max_tree_depth"`
	UploadMaxSize *ByteSize `yaml:"upload_max_size" toml:"upload_max_size"`
	HiddenGlobs   []string  `yaml:"hidden_globs" toml:"hidden_globs"`
	SearchLimit   *int      `yaml:"search_limit" toml:"search_limit"`
	SniffContent  *bool     `yaml:"sniff_content" toml:"sniff_content"`
}

// resolve fills absent tunables from base. ID and Root are never inherited.
func (e volumeEntry) resolve(base VolumeConfig) VolumeConfig {
	v := base
	v.ID = e.ID
	v.Root = e.Root
	if e.Label != "" {
		v.Label = e.Label
	}
	if e.MaxTreeDepth != nil {
		v.MaxTreeDepth = *e.MaxTreeDepth
	}
	if e.UploadMaxSize != nil {
		v.UploadMaxSize = *e.UploadMaxSize
	}
	if e.HiddenGlobs != nil {
		v.HiddenGlobs = e.HiddenGlobs
	}
	if e.SearchLimit != nil {
		v.SearchLimit = *e.SearchLimit
	}
	if e.SniffContent != nil {
		v.SniffContent = *e.SniffContent
	}
	return v
}

// LoadVolumesFile reads volume declarations from a .yaml, .yml or .toml file.
// Keys a declaration leaves out stay at their zero value.
func LoadVolumesFile(path string) ([]VolumeConfig, error) {
	return loadVolumesFile(path, VolumeConfig{})
}

func loadVolumesFile(path string, base VolumeConfig) ([]VolumeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read volumes file: %w", err)
	}

	var doc volumesFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported volumes file format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse volumes file: %w", err)
	}

	vols := make([]VolumeConfig, len(doc.Volumes))
	for i, e := range doc.Volumes {
		vols[i] = e.resolve(base)
	}
	return vols, nil
}
