package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/OCharnyshevich/mc-attributes/pkg/attribute"
)

// ParseAttributes decodes minecraft-data's attributes.json.
func ParseAttributes(data []byte) (AttributeRegistry, error) {
	var entries []Attribute
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse attributes: %w", err)
	}
	for i, a := range entries {
		if strings.TrimSpace(a.Resource) == "" {
			return nil, fmt.Errorf("parse attributes: entry %d (%q) has no resource", i, a.Name)
		}
	}
	return newAttributeTable(entries), nil
}

// LoadAttributes reads and parses an attributes.json file.
func LoadAttributes(path string) (AttributeRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	return ParseAttributes(data)
}

// Definitions converts the entries of reg whose resource is not already
// known into syncable attribute definitions with sequential ids starting
// at firstID. known reports whether a resource name is already registered.
func Definitions(reg AttributeRegistry, firstID int, known func(resource string) bool) []attribute.Definition {
	var defs []attribute.Definition
	id := firstID
	for _, a := range reg.All() {
		if known != nil && known(a.Resource) {
			continue
		}
		defs = append(defs, attribute.Definition{
			ID:      id,
			Name:    a.Resource,
			Min:     a.Min,
			Max:     a.Max,
			Default: a.Default,
		})
		id++
	}
	return defs
}
