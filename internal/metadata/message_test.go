package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestMessageUnmarshalBareContent(t *testing.T) {
	var m Message
	require.NoError(t, yaml.Unmarshal([]byte(`{type: warn, content: "Careful"}`), &m))

	assert.Equal(t, WarnType, m.Type)
	require.Len(t, m.Content, 1)
	assert.Equal(t, DefaultLanguage, m.Content[0].Language)
	assert.Equal(t, "Careful", m.Content[0].Text)
}

func TestMessageUnmarshalLocalisedContent(t *testing.T) {
	doc := `
type: say
content:
  - text: Hello
    lang: en
  - text: Bonjour
    lang: fr
`
	var m Message
	require.NoError(t, yaml.Unmarshal([]byte(doc), &m))

	require.Len(t, m.Content, 2)
	assert.Equal(t, "Bonjour", m.Select("fr").Text)
	assert.Equal(t, "Hello", m.Select("de").Text)
}

func TestMessageMultilingualRequiresEnglish(t *testing.T) {
	doc := `
type: say
content:
  - text: Bonjour
    lang: fr
  - text: Hallo
    lang: de
`
	var m Message
	err := yaml.Unmarshal([]byte(doc), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"en"`)
}

func TestMessageUnmarshalRejectsBadType(t *testing.T) {
	var m Message
	require.Error(t, yaml.Unmarshal([]byte(`{type: shout, content: hi}`), &m))
}

func TestMessageSelectEmptyContent(t *testing.T) {
	m := Message{Type: SayType}
	assert.Equal(t, MessageContent{}, m.Select(DefaultLanguage))
}

func TestMessageMarshalRoundTrip(t *testing.T) {
	m := NewMessage(ErrorType, "broken")
	m.Condition = `file("A.esp")`

	data, err := yaml.Marshal(m)
	require.NoError(t, err)

	var back Message
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestCleaningDataAsMessage(t *testing.T) {
	d := CleaningData{CRC: 0xCAFE, Utility: "xEdit", ITM: 3, UDR: 1, NavMesh: 0}
	msg := d.AsMessage()

	assert.Equal(t, WarnType, msg.Type)
	assert.Contains(t, msg.Select(DefaultLanguage).Text, "xEdit")

	d.Info = "Use the official cleaning guide."
	assert.Equal(t, d.Info, d.AsMessage().Select(DefaultLanguage).Text)
}
