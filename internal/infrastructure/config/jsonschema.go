package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
)

// GenerateSchema returns the JSON schema of Config.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/bnema/batchdl/config.schema.json"
	schema.Title = "batchdl configuration"
	schema.Description = "Configuration schema for batchdl, a concurrent batch file downloader"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// WriteSchemaFile writes the schema to path.
func WriteSchemaFile(path string) error {
	data, err := GenerateSchema()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
