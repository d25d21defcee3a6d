package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/colonnadedb/colonnade/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Emit the configuration JSON schema",
	Long: `Emit a JSON schema describing the Colonnade configuration file.

Editors pick the schema up for autocompletion and inline validation of
config.yaml; it also feeds documentation generators.

Examples:
  colonnade config schema
  colonnade config schema --output config.schema.json`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write the schema to a file instead of stdout")
}

// configSchema reflects the Config struct into a JSON schema document.
func configSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&config.Config{})
	s.Version = "https://json-schema.org/draft/2020-12/schema"
	s.Title = "Colonnade Configuration"
	s.Description = "Configuration schema for the Colonnade server"
	return json.MarshalIndent(s, "", "  ")
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := configSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(schemaOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
	return nil
}
