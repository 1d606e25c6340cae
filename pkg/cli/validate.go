package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/validate"
)

var validateStrict bool
var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every module, change and spec",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat warnings as failures")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the bulk JSON envelope")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}

	strict := validateStrict || cfg.StrictByDefault
	result, err := validate.RunAll(cfg.SpoolDir(), cfg.SpecsDir(), strict)
	if err != nil {
		return err
	}

	if validateJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	for _, item := range result.Items {
		status := "ok"
		if !item.Valid {
			status = "FAIL"
		}
		fmt.Printf("[%s] %-8s %s\n", status, item.Type, item.ID)
		for _, issue := range item.Issues {
			fmt.Printf("    %s: %s\n", issue.Level.String(), issue.Message)
		}
	}

	fmt.Printf("\n%d items, %d passed, %d failed\n",
		result.Summary.Totals.Items, result.Summary.Totals.Passed, result.Summary.Totals.Failed)

	if result.Summary.Totals.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
