package metadata

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loadstone/loadstone/internal/xerr"
)

// MetadataList is an unordered collection of plugin metadata entries plus
// the global messages, known Bash Tags and group declarations of one
// metadata document.
type MetadataList struct {
	plugins      map[string]PluginMetadata
	regexPlugins []PluginMetadata
	messages     []Message
	bashTags     []string
	groups       []Group
}

// NewMetadataList returns an empty list.
func NewMetadataList() *MetadataList {
	return &MetadataList{plugins: make(map[string]PluginMetadata)}
}

// metadataDoc is the fixed schema of a metadata document.
type metadataDoc struct {
	BashTags []string         `yaml:"bash_tags,omitempty"`
	Globals  []Message        `yaml:"globals,omitempty"`
	Groups   []Group          `yaml:"groups,omitempty"`
	Plugins  []PluginMetadata `yaml:"plugins,omitempty"`
}

// Load reads and replaces the list's contents from a metadata document.
// The previous contents are kept on any failure.
func (l *MetadataList) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &xerr.FileAccessError{Path: path, Msg: "cannot read metadata file"}
	}
	if err := l.loadBytes(data); err != nil {
		return fmt.Errorf("failed to load metadata file %q: %w", path, err)
	}
	return nil
}

func (l *MetadataList) loadBytes(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}

	loaded := NewMetadataList()
	// A file holding only comments parses as a null document.
	if len(root.Content) > 0 && root.Content[0].Tag != "!!null" {
		doc := root.Content[0]
		if err := checkMappingKeys(doc, "bash_tags", "globals", "groups", "plugins"); err != nil {
			return err
		}
		var raw metadataDoc
		if err := doc.Decode(&raw); err != nil {
			return err
		}
		for _, m := range raw.Globals {
			if err := m.ParseCondition(); err != nil {
				return err
			}
		}
		loaded.bashTags = raw.BashTags
		loaded.messages = raw.Globals
		loaded.groups = raw.Groups
		for _, p := range raw.Plugins {
			if err := loaded.AddPlugin(p); err != nil {
				return err
			}
		}
	}

	*l = *loaded
	return nil
}

// Save writes the list as a metadata document. Exact entries are emitted in
// name order so identical lists serialise identically.
func (l *MetadataList) Save(path string) error {
	doc := metadataDoc{
		BashTags: l.bashTags,
		Globals:  l.messages,
		Groups:   l.groups,
		Plugins:  l.Plugins(),
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &xerr.FileAccessError{Path: path, Msg: "cannot write metadata file"}
	}
	return nil
}

// Clear empties the list.
func (l *MetadataList) Clear() {
	*l = *NewMetadataList()
}

// Plugins returns every entry: exact entries in name order, then regex
// entries in declaration order.
func (l *MetadataList) Plugins() []PluginMetadata {
	names := make([]string, 0, len(l.plugins))
	for name := range l.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PluginMetadata, 0, len(names)+len(l.regexPlugins))
	for _, name := range names {
		out = append(out, l.plugins[name])
	}
	out = append(out, l.regexPlugins...)
	return out
}

// Messages returns the global messages.
func (l *MetadataList) Messages() []Message { return l.messages }

// SetMessages replaces the global messages.
func (l *MetadataList) SetMessages(msgs []Message) { l.messages = msgs }

// BashTags returns the sorted set of known Bash Tag names.
func (l *MetadataList) BashTags() []string {
	set := make(map[string]bool, len(l.bashTags))
	out := make([]string, 0, len(l.bashTags))
	for _, t := range l.bashTags {
		if !set[t] {
			set[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// SetBashTags replaces the known Bash Tag names.
func (l *MetadataList) SetBashTags(tags []string) { l.bashTags = tags }

// Groups returns the group declarations.
func (l *MetadataList) Groups() []Group { return l.groups }

// SetGroups replaces the group declarations.
func (l *MetadataList) SetGroups(groups []Group) { l.groups = groups }

// GroupGraph resolves the declared groups into their transitive order.
func (l *MetadataList) GroupGraph() (*GroupGraph, error) {
	return NewGroupGraph(l.groups)
}

// FindPlugin returns the metadata applying to the named plugin: its exact
// entry, if any, merged with every matching regex entry in declaration
// order. The result carries the given name even when no entry matches.
func (l *MetadataList) FindPlugin(name string) PluginMetadata {
	match, ok := l.plugins[strings.ToLower(name)]
	if !ok {
		match = NewPluginMetadata(name)
	}
	for _, regex := range l.regexPlugins {
		if regex.NameMatches(name) {
			match.MergeMetadata(regex)
		}
	}
	return match
}

// AddPlugin stores an entry. Adding a second exact entry for the same name
// is an error; regex entries accumulate.
func (l *MetadataList) AddPlugin(plugin PluginMetadata) error {
	if plugin.IsRegexPlugin() {
		l.regexPlugins = append(l.regexPlugins, plugin)
		return nil
	}
	key := plugin.LowercasedName()
	if _, exists := l.plugins[key]; exists {
		return fmt.Errorf("more than one entry exists for plugin %q", plugin.Name())
	}
	l.plugins[key] = plugin
	return nil
}

// ErasePlugin removes the exact entry for the named plugin, if present.
func (l *MetadataList) ErasePlugin(name string) {
	delete(l.plugins, strings.ToLower(name))
}

// MarkUserSet flags every explicit priority in the list as user-supplied.
// Applied to lists loaded as user metadata.
func (l *MetadataList) MarkUserSet() {
	for key, p := range l.plugins {
		p.MarkUserSet()
		l.plugins[key] = p
	}
	for i := range l.regexPlugins {
		l.regexPlugins[i].MarkUserSet()
	}
}
