package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MessageType is the severity of a message shown to the user.
type MessageType uint8

const (
	SayType MessageType = iota
	WarnType
	ErrorType
)

func (t MessageType) String() string {
	switch t {
	case WarnType:
		return "warn"
	case ErrorType:
		return "error"
	default:
		return "say"
	}
}

func parseMessageType(s string) (MessageType, error) {
	switch s {
	case "say":
		return SayType, nil
	case "warn":
		return WarnType, nil
	case "error":
		return ErrorType, nil
	}
	return SayType, fmt.Errorf("invalid message type %q", s)
}

// DefaultLanguage is the language assumed for bare-string message content
// and required when a message carries multiple translations.
const DefaultLanguage = "en"

// MessageContent is one localised text of a message.
type MessageContent struct {
	Text     string `yaml:"text"`
	Language string `yaml:"lang"`
}

// Message is a localised, optionally conditional note attached to a plugin
// or to the metadata list as a whole.
type Message struct {
	ConditionalMetadata

	Type    MessageType
	Content []MessageContent
}

// NewMessage returns a message with a single english content string.
func NewMessage(t MessageType, text string) Message {
	return Message{
		Type:    t,
		Content: []MessageContent{{Text: text, Language: DefaultLanguage}},
	}
}

// Select returns the content for the requested language, falling back to the
// english text, then to the first content present. An empty content list
// yields an empty value.
func (m Message) Select(language string) MessageContent {
	var english MessageContent
	hasEnglish := false
	for _, c := range m.Content {
		if c.Language == language {
			return c
		}
		if c.Language == DefaultLanguage && !hasEnglish {
			english = c
			hasEnglish = true
		}
	}
	if hasEnglish {
		return english
	}
	if len(m.Content) > 0 {
		return m.Content[0]
	}
	return MessageContent{}
}

// UnmarshalYAML decodes {type, content, condition} where content is either a
// bare string (implied english) or a list of {text, lang} entries. A message
// carrying several translations must include an english one.
func (m *Message) UnmarshalYAML(node *yaml.Node) error {
	if err := checkMappingKeys(node, "type", "content", "condition"); err != nil {
		return err
	}
	var raw struct {
		Type      string    `yaml:"type"`
		Content   yaml.Node `yaml:"content"`
		Condition string    `yaml:"condition"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	t, err := parseMessageType(raw.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	m.Type = t
	m.Condition = raw.Condition

	switch raw.Content.Kind {
	case yaml.ScalarNode:
		m.Content = []MessageContent{{Text: raw.Content.Value, Language: DefaultLanguage}}
	case yaml.SequenceNode:
		var contents []MessageContent
		if err := raw.Content.Decode(&contents); err != nil {
			return err
		}
		if len(contents) > 1 {
			hasEnglish := false
			for _, c := range contents {
				if c.Language == DefaultLanguage {
					hasEnglish = true
					break
				}
			}
			if !hasEnglish {
				return fmt.Errorf("line %d: multilingual messages must include an %q string",
					node.Line, DefaultLanguage)
			}
		}
		m.Content = contents
	case 0:
		m.Content = nil
	default:
		return fmt.Errorf("line %d: message content must be a string or a list", raw.Content.Line)
	}
	return nil
}

// MarshalYAML emits a bare content string for single english messages.
func (m Message) MarshalYAML() (interface{}, error) {
	var content interface{}
	if len(m.Content) == 1 && m.Content[0].Language == DefaultLanguage {
		content = m.Content[0].Text
	} else {
		content = m.Content
	}
	return struct {
		Type      string      `yaml:"type"`
		Content   interface{} `yaml:"content"`
		Condition string      `yaml:"condition,omitempty"`
	}{m.Type.String(), content, m.Condition}, nil
}
