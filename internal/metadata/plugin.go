package metadata

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// keyed is any metadata value with a merge identity.
type keyed interface {
	Key() string
}

// unionByKey appends the elements of src whose keys are not already present
// in dst, preserving the order of both slices.
func unionByKey[T keyed](dst, src []T) []T {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v.Key()] = true
	}
	for _, v := range src {
		if !seen[v.Key()] {
			seen[v.Key()] = true
			dst = append(dst, v)
		}
	}
	return dst
}

// regexChars are the characters that mark a plugin entry name as a regular
// expression matching many plugins rather than a single filename.
const regexChars = ":\\*?|"

// PluginMetadata is the mutable metadata record for one plugin (or, for
// regex entries, a family of plugins).
type PluginMetadata struct {
	name             string
	group            string
	enabled          bool
	priority         Priority
	globalPriority   Priority
	loadAfter        []File
	requirements     []File
	incompatibilities []File
	messages         []Message
	tags             []Tag
	dirtyInfo        []CleaningData
	locations        []Location
}

// NewPluginMetadata returns an empty, enabled metadata record for the named
// plugin.
func NewPluginMetadata(name string) PluginMetadata {
	return PluginMetadata{name: name, enabled: true}
}

func (p PluginMetadata) Name() string { return p.name }

// LowercasedName returns the case-folded name used as the map key for exact
// entries.
func (p PluginMetadata) LowercasedName() string { return strings.ToLower(p.name) }

// IsRegexPlugin reports whether the entry name is a regular expression.
func (p PluginMetadata) IsRegexPlugin() bool {
	return strings.ContainsAny(p.name, regexChars)
}

// NameMatches reports whether this entry applies to the given plugin name.
// Regex entries match case-insensitively against the whole name.
func (p PluginMetadata) NameMatches(name string) bool {
	if !p.IsRegexPlugin() {
		return strings.EqualFold(p.name, name)
	}
	re, err := regexp.Compile("(?i)^(?:" + p.name + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

func (p PluginMetadata) Group() string {
	if p.group == "" {
		return DefaultGroup
	}
	return p.group
}

// IsGroupExplicit reports whether a group was assigned rather than implied.
func (p PluginMetadata) IsGroupExplicit() bool { return p.group != "" }

func (p *PluginMetadata) SetGroup(group string) { p.group = group }

func (p PluginMetadata) IsEnabled() bool        { return p.enabled }
func (p *PluginMetadata) SetEnabled(value bool) { p.enabled = value }

func (p PluginMetadata) Priority() Priority          { return p.priority }
func (p *PluginMetadata) SetPriority(value Priority) { p.priority = value }

func (p PluginMetadata) GlobalPriority() Priority          { return p.globalPriority }
func (p *PluginMetadata) SetGlobalPriority(value Priority) { p.globalPriority = value }

func (p PluginMetadata) LoadAfter() []File         { return p.loadAfter }
func (p *PluginMetadata) SetLoadAfter(files []File) { p.loadAfter = files }

func (p PluginMetadata) Requirements() []File         { return p.requirements }
func (p *PluginMetadata) SetRequirements(files []File) { p.requirements = files }

func (p PluginMetadata) Incompatibilities() []File         { return p.incompatibilities }
func (p *PluginMetadata) SetIncompatibilities(files []File) { p.incompatibilities = files }

func (p PluginMetadata) Messages() []Message          { return p.messages }
func (p *PluginMetadata) SetMessages(msgs []Message)  { p.messages = msgs }

func (p PluginMetadata) Tags() []Tag         { return p.tags }
func (p *PluginMetadata) SetTags(tags []Tag) { p.tags = tags }

func (p PluginMetadata) DirtyInfo() []CleaningData         { return p.dirtyInfo }
func (p *PluginMetadata) SetDirtyInfo(info []CleaningData) { p.dirtyInfo = info }

func (p PluginMetadata) Locations() []Location          { return p.locations }
func (p *PluginMetadata) SetLocations(locs []Location)  { p.locations = locs }

// IsDirty reports whether the given CRC matches a recorded dirty build.
func (p PluginMetadata) IsDirty(crc uint32) bool {
	for _, d := range p.dirtyInfo {
		if d.CRC == crc {
			return true
		}
	}
	return false
}

// HasNameOnly reports whether the record carries no metadata besides its
// name.
func (p PluginMetadata) HasNameOnly() bool {
	return p.group == "" &&
		p.enabled &&
		!p.priority.IsSet() &&
		!p.globalPriority.IsSet() &&
		len(p.loadAfter) == 0 &&
		len(p.requirements) == 0 &&
		len(p.incompatibilities) == 0 &&
		len(p.messages) == 0 &&
		len(p.tags) == 0 &&
		len(p.dirtyInfo) == 0 &&
		len(p.locations) == 0
}

// MergeMetadata folds other into p. Scalars are taken from other when set
// there; keyed collections are unioned with p's elements first; messages
// concatenate, p's first. The merged record keeps p's name.
func (p *PluginMetadata) MergeMetadata(other PluginMetadata) {
	if other.HasNameOnly() {
		return
	}

	if !other.enabled {
		p.enabled = false
	}
	if other.group != "" {
		p.group = other.group
	}
	p.priority = p.priority.merge(other.priority)
	p.globalPriority = p.globalPriority.merge(other.globalPriority)

	p.loadAfter = unionByKey(p.loadAfter, other.loadAfter)
	p.requirements = unionByKey(p.requirements, other.requirements)
	p.incompatibilities = unionByKey(p.incompatibilities, other.incompatibilities)
	p.tags = unionByKey(p.tags, other.tags)
	p.dirtyInfo = unionByKey(p.dirtyInfo, other.dirtyInfo)
	p.locations = unionByKey(p.locations, other.locations)
	p.messages = append(p.messages, other.messages...)
}

// MarkUserSet flags explicit priorities as user-supplied. Applied to
// entries held as user metadata so that priority tie-breaks are total.
func (p *PluginMetadata) MarkUserSet() {
	p.priority = p.priority.markUser()
	p.globalPriority = p.globalPriority.markUser()
}

// EvalConditions resolves every condition-bearing sub-value against the
// evaluator, dropping the values whose conditions fail and clearing the
// condition strings on the copy it returns.
func (p PluginMetadata) EvalConditions(ev Evaluator) (PluginMetadata, error) {
	out := p
	var err error
	if out.loadAfter, err = evalFiles(p.loadAfter, ev); err != nil {
		return out, err
	}
	if out.requirements, err = evalFiles(p.requirements, ev); err != nil {
		return out, err
	}
	if out.incompatibilities, err = evalFiles(p.incompatibilities, ev); err != nil {
		return out, err
	}

	out.messages = nil
	for _, m := range p.messages {
		ok, err := m.EvalCondition(ev)
		if err != nil {
			return out, err
		}
		if ok {
			m.Condition = ""
			out.messages = append(out.messages, m)
		}
	}

	out.tags = nil
	for _, t := range p.tags {
		ok, err := t.EvalCondition(ev)
		if err != nil {
			return out, err
		}
		if ok {
			t.Condition = ""
			out.tags = append(out.tags, t)
		}
	}
	return out, nil
}

func evalFiles(files []File, ev Evaluator) ([]File, error) {
	var out []File
	for _, f := range files {
		ok, err := f.EvalCondition(ev)
		if err != nil {
			return nil, err
		}
		if ok {
			f.Condition = ""
			out = append(out, f)
		}
	}
	return out, nil
}

// validateConditions parses every condition string the record carries. A
// single unparseable condition makes the whole entry malformed.
func (p PluginMetadata) validateConditions() error {
	for _, fs := range [][]File{p.loadAfter, p.requirements, p.incompatibilities} {
		for _, f := range fs {
			if err := f.ParseCondition(); err != nil {
				return err
			}
		}
	}
	for _, m := range p.messages {
		if err := m.ParseCondition(); err != nil {
			return err
		}
	}
	for _, t := range p.tags {
		if err := t.ParseCondition(); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML decodes a plugin entry, rejecting unknown keys and entries
// whose condition strings do not parse.
func (p *PluginMetadata) UnmarshalYAML(node *yaml.Node) error {
	if err := checkMappingKeys(node, "name", "group", "enabled", "priority",
		"global_priority", "after", "req", "inc", "msg", "tag", "dirty", "url"); err != nil {
		return err
	}
	var raw struct {
		Name           string         `yaml:"name"`
		Group          string         `yaml:"group"`
		Enabled        *bool          `yaml:"enabled"`
		Priority       *int8          `yaml:"priority"`
		GlobalPriority *int8          `yaml:"global_priority"`
		After          []File         `yaml:"after"`
		Req            []File         `yaml:"req"`
		Inc            []File         `yaml:"inc"`
		Msg            []Message      `yaml:"msg"`
		Tag            []Tag          `yaml:"tag"`
		Dirty          []CleaningData `yaml:"dirty"`
		URL            []Location     `yaml:"url"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("line %d: plugin entry is missing a name", node.Line)
	}

	*p = PluginMetadata{
		name:              raw.Name,
		group:             raw.Group,
		enabled:           true,
		loadAfter:         raw.After,
		requirements:      raw.Req,
		incompatibilities: raw.Inc,
		messages:          raw.Msg,
		tags:              raw.Tag,
		dirtyInfo:         raw.Dirty,
		locations:         raw.URL,
	}
	if raw.Enabled != nil {
		p.enabled = *raw.Enabled
	}
	if raw.Priority != nil {
		p.priority = NewPriority(*raw.Priority)
	}
	if raw.GlobalPriority != nil {
		p.globalPriority = NewPriority(*raw.GlobalPriority)
	}

	if err := p.validateConditions(); err != nil {
		return fmt.Errorf("plugin %q: %w", raw.Name, err)
	}
	return nil
}

// MarshalYAML emits the entry with unset fields omitted.
func (p PluginMetadata) MarshalYAML() (interface{}, error) {
	raw := struct {
		Name           string         `yaml:"name"`
		Group          string         `yaml:"group,omitempty"`
		Enabled        *bool          `yaml:"enabled,omitempty"`
		Priority       *int8          `yaml:"priority,omitempty"`
		GlobalPriority *int8          `yaml:"global_priority,omitempty"`
		After          []File         `yaml:"after,omitempty"`
		Req            []File         `yaml:"req,omitempty"`
		Inc            []File         `yaml:"inc,omitempty"`
		Msg            []Message      `yaml:"msg,omitempty"`
		Tag            []Tag          `yaml:"tag,omitempty"`
		Dirty          []CleaningData `yaml:"dirty,omitempty"`
		URL            []Location     `yaml:"url,omitempty"`
	}{
		Name:  p.name,
		Group: p.group,
		After: p.loadAfter,
		Req:   p.requirements,
		Inc:   p.incompatibilities,
		Msg:   p.messages,
		Tag:   p.tags,
		Dirty: p.dirtyInfo,
		URL:   p.locations,
	}
	if !p.enabled {
		f := false
		raw.Enabled = &f
	}
	if p.priority.IsSet() {
		v := p.priority.Value()
		raw.Priority = &v
	}
	if p.globalPriority.IsSet() {
		v := p.globalPriority.Value()
		raw.GlobalPriority = &v
	}
	return raw, nil
}
