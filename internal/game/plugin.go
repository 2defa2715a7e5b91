package game

import (
	"regexp"
	"strings"
)

// versionRegexes pull a version string out of a plugin's description field,
// best effort. The keyword form is preferred over a bare dotted number.
var versionRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)version:?\s*v?(\d[\w.]*)`),
	regexp.MustCompile(`v?(\d+(?:\.\d+)+[a-z0-9]*)`),
}

// ExtractVersion finds a version string in a plugin description, returning
// "" when none is recognisable.
func ExtractVersion(description string) string {
	for _, re := range versionRegexes {
		if m := re.FindStringSubmatch(description); m != nil {
			return m[1]
		}
	}
	return ""
}

// Plugin is an immutable snapshot of one plugin file, keyed by its
// case-insensitive filename. It is created when the cache loads the file
// and never mutated afterwards.
type Plugin struct {
	name     string
	masters  []string
	formIDs  map[uint32]struct{}
	crc      uint32
	version  string
	isMaster bool
	isLight  bool
	isEmpty  bool
}

// NewPlugin builds a snapshot from the inspection library's view of a file.
func NewPlugin(name string, info *PluginInfo) *Plugin {
	formIDs := make(map[uint32]struct{}, len(info.FormIDs))
	for _, id := range info.FormIDs {
		formIDs[id] = struct{}{}
	}
	return &Plugin{
		name:     name,
		masters:  append([]string(nil), info.Masters...),
		formIDs:  formIDs,
		crc:      info.CRC,
		version:  ExtractVersion(info.Description),
		isMaster: info.IsMaster,
		isLight:  info.IsLight,
		isEmpty:  info.IsEmpty,
	}
}

func (p *Plugin) Name() string { return p.name }

// Masters returns the master filenames declared in the header, in header
// order.
func (p *Plugin) Masters() []string { return p.masters }

// IsMaster reports the master header flag.
func (p *Plugin) IsMaster() bool { return p.isMaster }

// IsLightPlugin reports the game-specific light module flag. Light plugins
// sort with the non-masters.
func (p *Plugin) IsLightPlugin() bool { return p.isLight }

// IsEmpty reports whether the file holds no records besides its header.
func (p *Plugin) IsEmpty() bool { return p.isEmpty }

// CRC returns the CRC-32 of the file bytes.
func (p *Plugin) CRC() uint32 { return p.crc }

// Version returns the version parsed from the description field, "" when
// none was found.
func (p *Plugin) Version() string { return p.version }

// FormIDCount returns the number of FormIDs the plugin defines or
// overrides.
func (p *Plugin) FormIDCount() int { return len(p.formIDs) }

// DoFormIDsOverlap reports whether two plugins touch any common record.
func (p *Plugin) DoFormIDsOverlap(other *Plugin) bool {
	small, large := p.formIDs, other.formIDs
	if len(large) < len(small) {
		small, large = large, small
	}
	for id := range small {
		if _, ok := large[id]; ok {
			return true
		}
	}
	return false
}

// HasMaster reports whether the named plugin appears in the header's master
// list, compared case-insensitively.
func (p *Plugin) HasMaster(name string) bool {
	for _, m := range p.masters {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}
