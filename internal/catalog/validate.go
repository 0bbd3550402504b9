package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DataFiles lists the catalog data files in load order.
var DataFiles = []string{"actions.json", "items.json", "upgrades.json", "skill_drops.json", "globals.json"}

// SchemaFileFor returns the schema file name guarding a data file.
func SchemaFileFor(dataFile string) string {
	ext := filepath.Ext(dataFile)
	return dataFile[:len(dataFile)-len(ext)] + ".schema.json"
}

// ValidateDir checks every catalog data file in dataDir against the JSON
// schemas in schemaDir and reports the first violation.
func ValidateDir(dataDir, schemaDir string) error {
	for _, name := range DataFiles {
		schemaPath := filepath.Join(schemaDir, SchemaFileFor(name))
		sch, err := jsonschema.Compile(schemaPath)
		if err != nil {
			return fmt.Errorf("failed to compile %s: %w", schemaPath, err)
		}
		raw, err := os.ReadFile(filepath.Join(dataDir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if err := sch.Validate(doc); err != nil {
			return fmt.Errorf("%s does not match its schema: %w", name, err)
		}
	}
	return nil
}
