package export

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes v as indented JSON, the format served by the HTTP layer.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// WriteYAML writes v in the same YAML dialect the ingest side accepts.
func WriteYAML(path string, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
