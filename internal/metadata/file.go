package metadata

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a reference to a plugin or other data file: a filename, an
// optional display name for messages, and an optional condition.
type File struct {
	ConditionalMetadata `yaml:",inline"`

	Name    string `yaml:"name"`
	Display string `yaml:"display,omitempty"`
}

// NewFile returns a file reference to the given name.
func NewFile(name string) File {
	return File{Name: name}
}

// DisplayName returns the display name, falling back to the filename.
func (f File) DisplayName() string {
	if f.Display != "" {
		return f.Display
	}
	return f.Name
}

// Key returns the case-insensitive identity used for set union on merge.
func (f File) Key() string {
	return strings.ToLower(f.Name)
}

// UnmarshalYAML accepts either a bare filename or a {name, display,
// condition} map.
func (f *File) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Name = node.Value
		return nil
	}
	if err := checkMappingKeys(node, "name", "display", "condition"); err != nil {
		return err
	}
	type rawFile File
	var raw rawFile
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*f = File(raw)
	return nil
}

// MarshalYAML emits the compact scalar form when only the name is set.
func (f File) MarshalYAML() (interface{}, error) {
	if f.Display == "" && f.Condition == "" {
		return f.Name, nil
	}
	type rawFile File
	return rawFile(f), nil
}

// Tag is a Bash Tag suggestion: a tag name, whether it is being added or
// removed, and an optional condition.
type Tag struct {
	ConditionalMetadata `yaml:",inline"`

	Name     string
	Addition bool
}

// NewTag returns an addition or removal suggestion for the named tag.
func NewTag(name string, addition bool) Tag {
	return Tag{Name: name, Addition: addition}
}

// Key returns the identity used for set union on merge: tags key on the
// (name, addition) pair, so adding and removing the same tag coexist.
func (t Tag) Key() string {
	if t.Addition {
		return "+" + strings.ToLower(t.Name)
	}
	return "-" + strings.ToLower(t.Name)
}

// splitTagName separates the removal prefix from a raw tag string.
func splitTagName(raw string) (name string, addition bool) {
	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), false
	}
	return raw, true
}

// UnmarshalYAML accepts either "Name" / "-Name" or a {name, condition} map.
func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Name, t.Addition = splitTagName(node.Value)
		return nil
	}
	if err := checkMappingKeys(node, "name", "condition"); err != nil {
		return err
	}
	var raw struct {
		Name      string `yaml:"name"`
		Condition string `yaml:"condition"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	t.Name, t.Addition = splitTagName(raw.Name)
	t.Condition = raw.Condition
	return nil
}

// MarshalYAML emits the prefix string form when no condition is attached.
func (t Tag) MarshalYAML() (interface{}, error) {
	name := t.Name
	if !t.Addition {
		name = "-" + name
	}
	if t.Condition == "" {
		return name, nil
	}
	return struct {
		Name      string `yaml:"name"`
		Condition string `yaml:"condition"`
	}{name, t.Condition}, nil
}

// Location is a URL a plugin can be found at, with an optional human name.
type Location struct {
	URL  string `yaml:"link"`
	Name string `yaml:"name,omitempty"`
}

// Key returns the identity used for set union on merge.
func (l Location) Key() string {
	return strings.ToLower(l.URL)
}

// UnmarshalYAML accepts either a bare URL or a {link, name} map.
func (l *Location) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		l.URL = node.Value
		return nil
	}
	if err := checkMappingKeys(node, "link", "name"); err != nil {
		return err
	}
	type rawLocation Location
	var raw rawLocation
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*l = Location(raw)
	return nil
}

// MarshalYAML emits the compact scalar form when only the URL is set.
func (l Location) MarshalYAML() (interface{}, error) {
	if l.Name == "" {
		return l.URL, nil
	}
	type rawLocation Location
	return rawLocation(l), nil
}
