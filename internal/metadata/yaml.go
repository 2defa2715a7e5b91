package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// checkMappingKeys rejects any key of a mapping node that is not in the
// allowed set. The document schema is fixed; unknown keys are load errors
// rather than silently ignored data.
func checkMappingKeys(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a map", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("line %d: unrecognised key %q", node.Content[i].Line, key)
		}
	}
	return nil
}
