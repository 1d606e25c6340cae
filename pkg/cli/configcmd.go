package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration cascade",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged config cascade and which files contributed",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}

	fmt.Printf("project root:    %s\n", cfg.ProjectRoot)
	fmt.Printf("spool dir name:  %s\n", cfg.SpoolDirName)
	fmt.Printf("default schema:  %s\n", cfg.DefaultSchema)
	fmt.Printf("strict:          %v\n", cfg.StrictByDefault)
	fmt.Println("loaded from:")
	for _, path := range cfg.LoadedFrom {
		fmt.Printf("  - %s\n", path)
	}

	settings, err := json.MarshalIndent(cfg.Settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("merged settings:")
	fmt.Fprintln(os.Stdout, string(settings))
	return nil
}
