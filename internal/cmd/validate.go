package cmd

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/dosanma1/webforge/internal/workspace"
)

//go:embed schemas/webforge-config.v1.schema.json
var schemaFS embed.FS

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate webforge.json configuration",
	Long: `Validates the webforge.json configuration file against its JSON Schema,
then runs semantic checks (project names, default project, output paths).`,
	RunE: runValidateCmd,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := findWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("not in a webforge workspace: %w", err)
	}

	configPath := filepath.Join(workspaceRoot, workspace.ConfigFileName)
	fmt.Printf("🔍 Validating %s...\n", workspace.ConfigFileName)

	schemaBytes, err := schemaFS.ReadFile("schemas/webforge-config.v1.schema.json")
	if err != nil {
		return fmt.Errorf("failed to load JSON schema: %w", err)
	}

	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", workspace.ConfigFileName, err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	documentLoader := gojsonschema.NewBytesLoader(configBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		fmt.Println("\n❌ Validation failed with the following errors:")
		fmt.Println()
		for i, desc := range result.Errors() {
			fmt.Printf("%d. %s\n", i+1, desc.String())
			fmt.Printf("   Field: %s\n\n", desc.Field())
		}
		return fmt.Errorf("validation failed with %d errors", len(result.Errors()))
	}

	config, err := workspace.LoadConfigFrom(configPath)
	if err != nil {
		return err
	}
	if err := workspace.NewValidator().Validate(config); err != nil {
		return fmt.Errorf("❌ Semantic validation failed: %w", err)
	}

	fmt.Printf("✅ %s is valid!\n", workspace.ConfigFileName)
	return nil
}
