package solrmetadata

import (
	"encoding/json"
	"fmt"
)

// Dotted-path layout of a configuration subtree in the ConfigStore:
//
//	configs.<name>.cmodels                          []string
//	configs.<name>.fields                           []Field
//	configs.<name>.description.description_field    string
//	configs.<name>.description.description_label    string
//	configs.<name>.description.truncation           TruncationOptions
const configsRoot = "configs"

// ConfigPath returns the root path of the named configuration's subtree.
func ConfigPath(name string) string {
	return configsRoot + "." + name
}

// CmodelsPath returns the path of the configuration's declared cmodel list.
func CmodelsPath(name string) string {
	return ConfigPath(name) + ".cmodels"
}

// FieldsPath returns the path of the configuration's field list.
func FieldsPath(name string) string {
	return ConfigPath(name) + ".fields"
}

func descriptionFieldPath(name string) string {
	return ConfigPath(name) + ".description.description_field"
}

func descriptionLabelPath(name string) string {
	return ConfigPath(name) + ".description.description_label"
}

func truncationPath(name string) string {
	return ConfigPath(name) + ".description.truncation"
}

// Stored values come back from the ConfigStore as whatever the backend's
// JSON layer produced. The helpers below coerce them at the boundary instead
// of letting dotted-path shapes leak into the service.

func decodeString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func decodeStringSlice(v any) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func decodeTruncation(v any) (TruncationOptions, error) {
	var t TruncationOptions
	if v == nil {
		return t, nil
	}
	if tv, ok := v.(TruncationOptions); ok {
		return tv, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return t, fmt.Errorf("encode truncation options: %w", err)
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("decode truncation options: %w", err)
	}
	return t, nil
}

// DecodeFields coerces a stored field-list value back into []Field. Used by
// FieldService implementations that keep fields in the ConfigStore.
func DecodeFields(v any) ([]Field, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case []Field:
		out := make([]Field, len(vv))
		copy(out, vv)
		return out, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode field list: %w", err)
	}
	var fields []Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode field list: %w", err)
	}
	return fields, nil
}
