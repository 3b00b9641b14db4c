package mixer

import (
	"strings"

	"github.com/pkg/errors"
)

// Looks up a case-insensitive name in a table of enum names
func parseName(names []string, kind string, text string) (int, error) {
	for i, name := range names {
		if name != "" && strings.EqualFold(name, strings.TrimSpace(text)) {
			return i, nil
		}
	}
	return 0, errors.Errorf("unknown %s %q", kind, text)
}

func nameOf(names []string, index int) string {
	if index < 0 || index >= len(names) || names[index] == "" {
		return "UNKNOWN"
	}
	return names[index]
}

// TOML hands strings to UnmarshalTOML as interface{}
func tomlString(data interface{}, kind string) (string, error) {
	text, ok := data.(string)
	if !ok {
		return "", errors.Errorf("%s must be a string, got %T", kind, data)
	}
	return text, nil
}
