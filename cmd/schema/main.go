// Command schema regenerates the JSON schemas under schemas/ from the
// catalog loader types. Run it after changing a data file shape.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/eseidel/better-idle-sub000/internal/catalog"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "schemas", "directory to write the JSON schemas")
	flag.Parse()

	schemas := buildSchemas()
	for _, name := range catalog.DataFiles {
		outPath := filepath.Join(outDir, catalog.SchemaFileFor(name))
		if err := writeSchema(outPath, schemas[name]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", outPath, err)
			os.Exit(1)
		}
		fmt.Println("wrote", outPath)
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Anonymous:                  true,
	}

	// entry reflects one data file element with the version stripped; the
	// hand-built roots below carry it instead.
	entry := func(v any) *jsonschema.Schema {
		s := r.ReflectFromType(reflect.TypeOf(v))
		s.Version = ""
		return s
	}
	arrayOf := func(item *jsonschema.Schema, title, desc string) *jsonschema.Schema {
		return &jsonschema.Schema{
			Version:     jsonschema.Version,
			Type:        "array",
			Items:       item,
			Title:       title,
			Description: desc,
		}
	}

	globals := entry(catalog.GlobalsJSON{})
	globals.Version = jsonschema.Version
	globals.Title = "Catalog Globals"
	globals.Description = "World constants shared by every action, loaded from data/globals.json."

	return map[string]*jsonschema.Schema{
		"actions.json": arrayOf(entry(catalog.ActionJSON{}), "Catalog Actions",
			"Repeatable activities with durations, yields and hazards, loaded from data/actions.json."),
		"items.json": arrayOf(entry(catalog.ItemJSON{}), "Catalog Items",
			"Bankable items and their vendor sell prices, loaded from data/items.json."),
		"upgrades.json": arrayOf(entry(catalog.UpgradeJSON{}), "Catalog Upgrades",
			"One-time shop purchases: tool tiers and bank expansions, loaded from data/upgrades.json."),
		"skill_drops.json": {
			Version: jsonschema.Version,
			Type:    "object",
			AdditionalProperties: &jsonschema.Schema{
				Type:  "array",
				Items: entry(catalog.DropJSON{}),
			},
			Title:       "Catalog Skill Drops",
			Description: "Per-skill probabilistic drops rolled on every successful completion, loaded from data/skill_drops.json.",
		},
		"globals.json": globals,
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
