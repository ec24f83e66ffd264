package synthetic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Item mirrors the minimal shape of one exported game record.
type Item struct {
	UniqueName  string `json:"uniqueName"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	MasteryReq  int    `json:"masteryReq"`
}

// Categories the generator writes one file for each of.
var sampleCategories = []string{"Warframes", "Primary", "Secondary", "Melee", "Arch-Gun"}

// GenerateSampleData writes one JSON array file per sample category, each
// holding rows records with uniqueName identifiers, suitable as sync input.
func GenerateSampleData(rows int, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	for _, category := range sampleCategories {
		items := make([]Item, 0, rows)
		for i := 0; i < rows; i++ {
			items = append(items, Item{
				UniqueName:  fmt.Sprintf("/Lotus/Sample/%s/Item%d", category, i),
				Name:        fmt.Sprintf("Sample %s %d", category, i),
				Description: fmt.Sprintf("Synthetic %s record %d", category, i),
				Category:    category,
				MasteryReq:  i % 10,
			})
		}

		if err := writeSampleFile(filepath.Join(dir, category+".json"), items); err != nil {
			return err
		}
	}

	return nil
}

func writeSampleFile(path string, items []Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample items: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}

	return nil
}
