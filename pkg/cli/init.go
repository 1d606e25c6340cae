package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/config"
	"github.com/withakay/spool-go/internal/templates"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new spool knowledge base in the current directory",
	Long: `Initialize a new spool knowledge base in the current directory.

Creates:
  - .spool/modules, .spool/changes, .spool/specs
  - .spool/schemas/spec-driven/schema.yaml (the built-in workflow schema)
  - .spool/config.json (project-level settings)

Existing directories and files are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	fmt.Println("Initializing spool knowledge base...")

	spoolDir := filepath.Join(cwd, config.SpoolDirName)
	dirs := []string{
		filepath.Join(spoolDir, "modules"),
		filepath.Join(spoolDir, "changes", "archive"),
		filepath.Join(spoolDir, "specs"),
		filepath.Join(spoolDir, "schemas", "spec-driven", "templates"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	fmt.Println("  created .spool/{modules,changes,specs,schemas}")

	schemaPath := filepath.Join(spoolDir, "schemas", "spec-driven", "schema.yaml")
	if !fileExistsCLI(schemaPath) {
		if err := os.WriteFile(schemaPath, []byte(templates.SpecDrivenSchemaYaml), 0o644); err != nil {
			return fmt.Errorf("writing schema.yaml: %w", err)
		}
		fmt.Println("  created .spool/schemas/spec-driven/schema.yaml")
	}

	configPath := filepath.Join(spoolDir, "config.json")
	if !fileExistsCLI(configPath) {
		if err := os.WriteFile(configPath, []byte("{}\n"), 0o644); err != nil {
			return fmt.Errorf("writing config.json: %w", err)
		}
		fmt.Println("  created .spool/config.json")
	}

	templatesDir := filepath.Join(spoolDir, "schemas", "spec-driven", "templates")
	seedTemplates := map[string]string{
		"proposal.md.tmpl": templates.ProposalMd,
		"design.md.tmpl":   templates.DesignMd,
		"spec.md.tmpl":     templates.SpecMd,
		"tasks.md.tmpl":    templates.EnhancedTasksTemplate("NNN-MM_change-name"),
	}
	for name, content := range seedTemplates {
		path := filepath.Join(templatesDir, name)
		if fileExistsCLI(path) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	fmt.Println("  created .spool/schemas/spec-driven/templates/*.tmpl")

	fmt.Println("\nspool project initialized.")
	fmt.Println("Next: run 'spool create module <name>' to start your first module.")

	return nil
}

func fileExistsCLI(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
