package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersion(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Version: 1.2.3", "1.2.3"},
		{"version 2.0", "2.0"},
		{"My mod, Version: v0.18.20", "0.18.20"},
		{"Adds things. 3.1a is the latest.", "3.1a"},
		{"No numbers here", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractVersion(tc.description), "description %q", tc.description)
	}
}

func TestPluginSnapshot(t *testing.T) {
	info := &PluginInfo{
		Masters:     []string{"Base.esm", "Expansion.esm"},
		FormIDs:     []uint32{0x00000F00, 0x01000F01},
		CRC:         0xCAFEBABE,
		Description: "Version: 1.0",
		IsMaster:    true,
	}
	p := NewPlugin("Mod.esp", info)

	assert.Equal(t, "Mod.esp", p.Name())
	assert.True(t, p.IsMaster())
	assert.False(t, p.IsLightPlugin())
	assert.EqualValues(t, 0xCAFEBABE, p.CRC())
	assert.Equal(t, "1.0", p.Version())
	assert.Equal(t, 2, p.FormIDCount())
	assert.True(t, p.HasMaster("BASE.ESM"))
	assert.False(t, p.HasMaster("Other.esm"))
}

func TestDoFormIDsOverlap(t *testing.T) {
	a := NewPlugin("A.esp", &PluginInfo{FormIDs: []uint32{1, 2, 3}})
	b := NewPlugin("B.esp", &PluginInfo{FormIDs: []uint32{3, 4}})
	c := NewPlugin("C.esp", &PluginInfo{FormIDs: []uint32{5}})

	assert.True(t, a.DoFormIDsOverlap(b))
	assert.True(t, b.DoFormIDsOverlap(a))
	assert.False(t, a.DoFormIDsOverlap(c))
}
