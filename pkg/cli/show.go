package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/catalog"
)

var showType string
var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a change or spec by flexible id",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showType, "type", "", `disambiguate an id that matches both: "change" or "spec"`)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "emit JSON instead of a summary")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}
	id := args[0]

	change, changeErr := catalog.ResolveChange(cfg.SpoolDir(), id)
	specs, err := catalog.ListSpecs(cfg.SpecsDir())
	if err != nil {
		return err
	}
	var spec *catalog.Spec
	for i := range specs {
		if specs[i].ID == id {
			spec = &specs[i]
			break
		}
	}

	switch {
	case changeErr == nil && spec != nil:
		switch showType {
		case "change":
			return printChange(change)
		case "spec":
			return printSpec(*spec)
		default:
			return fmt.Errorf("%q is ambiguous: matches both a change and a spec; disambiguate with --type=change or --type=spec", id)
		}
	case changeErr == nil:
		return printChange(change)
	case spec != nil:
		return printSpec(*spec)
	default:
		return fmt.Errorf("%q not found as a change or a spec", id)
	}
}

func printChange(c catalog.Change) error {
	if showJSON {
		return json.NewEncoder(os.Stdout).Encode(c)
	}
	fmt.Printf("change %s\n", c.ID.Canonical())
	fmt.Printf("  path:     %s\n", c.Path)
	fmt.Printf("  tasks:    %d\n", c.TaskCount)
	fmt.Printf("  updated:  %s\n", c.HumanLastModified())
	return nil
}

func printSpec(s catalog.Spec) error {
	if showJSON {
		return json.NewEncoder(os.Stdout).Encode(s)
	}
	fmt.Printf("spec %s\n", s.ID)
	fmt.Printf("  path:         %s\n", s.Path)
	fmt.Printf("  requirements: %d\n", s.RequirementCount)
	return nil
}
