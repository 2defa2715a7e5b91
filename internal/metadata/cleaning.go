package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CleaningData records the state of one known-dirty build of a plugin: the
// CRC of the dirty file, the utility that cleans it, and the record counts
// the utility reports.
type CleaningData struct {
	CRC     uint32 `yaml:"crc"`
	Utility string `yaml:"util"`
	ITM     int    `yaml:"itm,omitempty"`
	UDR     int    `yaml:"udr,omitempty"`
	NavMesh int    `yaml:"nav,omitempty"`
	Info    string `yaml:"info,omitempty"`
}

// Key returns the identity used for set union on merge: cleaning data keys
// on the dirty file's CRC alone.
func (c CleaningData) Key() string {
	return fmt.Sprintf("%08x", c.CRC)
}

// AsMessage renders the cleaning record as a warning for display.
func (c CleaningData) AsMessage() Message {
	text := fmt.Sprintf("Contains %d ITM records, %d deleted references and %d deleted navmeshes. Clean with %s.",
		c.ITM, c.UDR, c.NavMesh, c.Utility)
	if c.Info != "" {
		text = c.Info
	}
	return NewMessage(WarnType, text)
}

// UnmarshalYAML rejects unknown keys before decoding.
func (c *CleaningData) UnmarshalYAML(node *yaml.Node) error {
	if err := checkMappingKeys(node, "crc", "util", "itm", "udr", "nav", "info"); err != nil {
		return err
	}
	type rawCleaningData CleaningData
	var raw rawCleaningData
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*c = CleaningData(raw)
	return nil
}
