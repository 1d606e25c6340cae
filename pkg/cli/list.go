package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/catalog"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules, changes or specs",
}

var listModulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List modules",
	RunE:  runListModules,
}

var listChangesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List changes",
	RunE:  runListChanges,
}

var listSpecsCmd = &cobra.Command{
	Use:   "specs",
	Short: "List specs",
	RunE:  runListSpecs,
}

func init() {
	for _, c := range []*cobra.Command{listModulesCmd, listChangesCmd, listSpecsCmd} {
		c.Flags().BoolVar(&listJSON, "json", false, "emit JSON instead of a table")
	}
	listCmd.AddCommand(listModulesCmd, listChangesCmd, listSpecsCmd)
	rootCmd.AddCommand(listCmd)
}

func runListModules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}
	modules, err := catalog.ListModules(cfg.SpoolDir())
	if err != nil {
		return err
	}
	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(modules)
	}
	if len(modules) == 0 {
		fmt.Println("no modules")
		return nil
	}
	for _, m := range modules {
		fmt.Printf("%s  %-30s  %d active change(s)\n", m.Number, m.Slug, m.ActiveChanges)
	}
	return nil
}

func runListChanges(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}
	changes, err := catalog.ListChanges(cfg.SpoolDir())
	if err != nil {
		return err
	}
	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(changes)
	}
	if len(changes) == 0 {
		fmt.Println("no changes")
		return nil
	}
	for _, c := range changes {
		fmt.Printf("%-30s  %3d task(s)  updated %s\n", c.ID.Canonical(), c.TaskCount, c.HumanLastModified())
	}
	return nil
}

func runListSpecs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}
	specs, err := catalog.ListSpecs(cfg.SpecsDir())
	if err != nil {
		return err
	}
	if listJSON {
		return json.NewEncoder(os.Stdout).Encode(specs)
	}
	if len(specs) == 0 {
		fmt.Println("no specs")
		return nil
	}
	for _, s := range specs {
		fmt.Printf("%-30s  %d requirement(s)\n", s.ID, s.RequirementCount)
	}
	return nil
}
