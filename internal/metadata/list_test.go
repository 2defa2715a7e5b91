package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadstone/loadstone/internal/xerr"
)

const testDoc = `bash_tags:
  - Delev
  - Relev
  - Delev
globals:
  - type: say
    content: "A general note"
  - type: warn
    content: "Conditional note"
    condition: file("Missing.esp")
groups:
  - name: early
  - name: late
    after: [early]
plugins:
  - name: Base.esm
    priority: 5
    tag: [Delev, -Relev]
    dirty:
      - crc: 0xDEADBEEF
        util: xEdit
        itm: 2
        udr: 1
  - name: "Mod A.esp"
    group: late
    after:
      - Base.esm
      - name: Optional.esp
        condition: file("Optional.esp")
    msg:
      - type: warn
        content: Watch out
  - name: 'Patch.*\.esp'
    tag: [Relev]
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMetadataListLoad(t *testing.T) {
	l := NewMetadataList()
	require.NoError(t, l.Load(writeTemp(t, testDoc)))

	assert.Equal(t, []string{"Delev", "Relev"}, l.BashTags())
	assert.Len(t, l.Messages(), 2)
	assert.Len(t, l.Groups(), 2)

	base := l.FindPlugin("base.esm")
	assert.Equal(t, NewPriority(5), base.Priority())
	require.Len(t, base.DirtyInfo(), 1)
	assert.EqualValues(t, 0xDEADBEEF, base.DirtyInfo()[0].CRC)
	assert.Equal(t, 2, base.DirtyInfo()[0].ITM)

	modA := l.FindPlugin("Mod A.esp")
	assert.Equal(t, "late", modA.Group())
	require.Len(t, modA.LoadAfter(), 2)
	assert.Equal(t, `file("Optional.esp")`, modA.LoadAfter()[1].Condition)
}

func TestMetadataListLoadMissingFile(t *testing.T) {
	err := NewMetadataList().Load(filepath.Join(t.TempDir(), "nope.yaml"))

	var fileErr *xerr.FileAccessError
	require.ErrorAs(t, err, &fileErr)
}

func TestMetadataListLoadRejectsUnknownKeys(t *testing.T) {
	err := NewMetadataList().Load(writeTemp(t, "plugins:\n  - name: A.esp\n    weight: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight")

	err = NewMetadataList().Load(writeTemp(t, "extras: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extras")
}

func TestMetadataListLoadRejectsBadCondition(t *testing.T) {
	doc := `plugins:
  - name: A.esp
    msg:
      - type: say
        content: hi
        condition: file("unterminated
`
	err := NewMetadataList().Load(writeTemp(t, doc))
	require.Error(t, err)
}

func TestMetadataListLoadRejectsDuplicateEntries(t *testing.T) {
	doc := "plugins:\n  - name: A.esp\n  - name: a.ESP\n"
	err := NewMetadataList().Load(writeTemp(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one entry")
}

func TestMetadataListLoadKeepsContentsOnFailure(t *testing.T) {
	l := NewMetadataList()
	require.NoError(t, l.AddPlugin(NewPluginMetadata("Keep.esp")))

	require.Error(t, l.Load(writeTemp(t, "plugins:\n  - name: A.esp\n    bogus: 1\n")))
	assert.False(t, l.FindPlugin("Keep.esp").HasNameOnly() &&
		len(l.Plugins()) == 0, "prior contents must survive a failed load")
	assert.Len(t, l.Plugins(), 1)
}

func TestFindPluginMergesRegexEntries(t *testing.T) {
	l := NewMetadataList()
	require.NoError(t, l.Load(writeTemp(t, testDoc)))

	patch := l.FindPlugin("Patch Foo.esp")
	require.Len(t, patch.Tags(), 1)
	assert.Equal(t, "Relev", patch.Tags()[0].Name)
	// The returned record keeps the queried name, not the pattern.
	assert.Equal(t, "Patch Foo.esp", patch.Name())

	unknown := l.FindPlugin("Unknown.esp")
	assert.True(t, unknown.HasNameOnly())
	assert.Equal(t, "Unknown.esp", unknown.Name())
}

func TestAddAndErasePlugin(t *testing.T) {
	l := NewMetadataList()
	require.NoError(t, l.AddPlugin(NewPluginMetadata("A.esp")))
	require.Error(t, l.AddPlugin(NewPluginMetadata("a.esp")))

	l.ErasePlugin("A.ESP")
	require.NoError(t, l.AddPlugin(NewPluginMetadata("A.esp")))
}

func TestMetadataListSaveLoadRoundTrip(t *testing.T) {
	l := NewMetadataList()
	require.NoError(t, l.Load(writeTemp(t, testDoc)))

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, l.Save(path))

	reloaded := NewMetadataList()
	require.NoError(t, reloaded.Load(path))

	assert.Equal(t, l.BashTags(), reloaded.BashTags())
	assert.Equal(t, l.Groups(), reloaded.Groups())
	assert.Len(t, reloaded.Plugins(), len(l.Plugins()))

	modA := reloaded.FindPlugin("Mod A.esp")
	assert.Equal(t, "late", modA.Group())
	require.Len(t, modA.LoadAfter(), 2)
	assert.Equal(t, `file("Optional.esp")`, modA.LoadAfter()[1].Condition)
}

func TestMarkUserSet(t *testing.T) {
	l := NewMetadataList()
	p := NewPluginMetadata("A.esp")
	p.SetPriority(NewPriority(3))
	require.NoError(t, l.AddPlugin(p))

	l.MarkUserSet()
	assert.Equal(t, PriorityUser, l.FindPlugin("A.esp").Priority().State())
}
