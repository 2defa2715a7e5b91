package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loadstone/loadstone/internal/xerr"
)

// manifestEntry describes one plugin in a manifest document.
type manifestEntry struct {
	Name        string   `yaml:"name"`
	Master      bool     `yaml:"master"`
	Light       bool     `yaml:"light"`
	Empty       bool     `yaml:"empty"`
	CRC         uint32   `yaml:"crc"`
	Description string   `yaml:"description"`
	Masters     []string `yaml:"masters"`
	FormIDs     []uint32 `yaml:"formids"`
}

// ManifestReader serves plugin header data from a YAML manifest instead of
// the binary files themselves. It lets the engine run against plugin sets
// whose files are absent or whose format no inspection library is wired
// for; paths resolve by filename.
type ManifestReader struct {
	entries map[string]*PluginInfo
}

// LoadManifest reads a manifest document listing plugins and their header
// fields.
func LoadManifest(path string) (*ManifestReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &xerr.FileAccessError{Path: path, Msg: "cannot read plugin manifest"}
	}

	var doc struct {
		Plugins []manifestEntry `yaml:"plugins"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse plugin manifest %q: %w", path, err)
	}

	r := &ManifestReader{entries: make(map[string]*PluginInfo, len(doc.Plugins))}
	for _, e := range doc.Plugins {
		if e.Name == "" {
			return nil, fmt.Errorf("plugin manifest %q: entry is missing a name", path)
		}
		r.entries[strings.ToLower(e.Name)] = &PluginInfo{
			Masters:     e.Masters,
			FormIDs:     e.FormIDs,
			CRC:         e.CRC,
			Description: e.Description,
			IsMaster:    e.Master,
			IsLight:     e.Light,
			IsEmpty:     e.Empty,
		}
	}
	return r, nil
}

// Names returns the manifest's plugin names in declaration-independent
// sorted order.
func (r *ManifestReader) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	// Keys are lowercased; sorting them is stable across runs.
	sort.Strings(names)
	return names
}

// ReadPlugin serves the manifest entry matching the path's filename.
func (r *ManifestReader) ReadPlugin(path string) (*PluginInfo, error) {
	name := strings.ToLower(filepath.Base(path))
	info, ok := r.entries[name]
	if !ok {
		return nil, &xerr.FileAccessError{Path: path, Msg: "plugin is not in the manifest"}
	}
	return info, nil
}

var _ PluginReader = (*ManifestReader)(nil)
