// Package syncer reconciles JSON array files against MongoDB collections,
// keyed on each record's uniqueName field.
package syncer

import (
	"path/filepath"
	"strings"
)

// IdentifierField is the record key used to match documents across the
// source file and the stored collection.
const IdentifierField = "uniqueName"

// Record is a single decoded JSON object from a source file.
type Record map[string]any

// UniqueName returns the record's identifier, or "" when the field is
// missing, empty, or not a string. Records without an identifier are
// never synced.
func (r Record) UniqueName() string {
	name, ok := r[IdentifierField].(string)
	if !ok {
		return ""
	}

	return name
}

// CollectionName converts a JSON file path to its target collection name:
// the lowercased filename stem with "-" replaced by "_".
func CollectionName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return strings.ReplaceAll(strings.ToLower(stem), "-", "_")
}
