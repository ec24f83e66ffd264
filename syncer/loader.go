package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FormatError reports a source file whose root JSON value is not an array.
type FormatError struct {
	Path     string
	TypeName string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("expected array in %s, got %s", e.Path, e.TypeName)
}

// Load reads a UTF-8 JSON file and returns its records. The root value must
// be an array; anything else yields a *FormatError. Array elements that are
// not objects are dropped, since they cannot carry an identifier.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var root any
	if err := decoder.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON in %s: %w", path, err)
	}

	items, ok := root.([]any)
	if !ok {
		return nil, &FormatError{Path: path, TypeName: typeName(root)}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if object, ok := item.(map[string]any); ok {
			records = append(records, Record(object))
		}
	}

	return records, nil
}

// typeName names a decoded JSON value using the vocabulary the rest of the
// data tooling reports for these shapes.
func typeName(value any) string {
	switch v := value.(type) {
	case map[string]any:
		return "dict"
	case []any:
		return "list"
	case string:
		return "str"
	case bool:
		return "bool"
	case json.Number:
		if strings.ContainsAny(v.String(), ".eE") {
			return "float"
		}
		return "int"
	case nil:
		return "NoneType"
	default:
		return fmt.Sprintf("%T", value)
	}
}
