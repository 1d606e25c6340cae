package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/catalog"
	"github.com/withakay/spool-go/internal/workflow"
)

var workflowChange string
var workflowArtifact string
var workflowJSON bool

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Resolve a change's artifact instructions and apply-state",
}

var workflowInstructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Show per-artifact instructions for a change",
	RunE:  runWorkflowInstructions,
}

var workflowApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Show the apply-state and task context for a change",
	RunE:  runWorkflowApply,
}

func init() {
	for _, c := range []*cobra.Command{workflowInstructionsCmd, workflowApplyCmd} {
		c.Flags().StringVar(&workflowChange, "change", "", "change id (required)")
		c.Flags().BoolVar(&workflowJSON, "json", false, "emit JSON instead of text")
		c.MarkFlagRequired("change")
	}
	workflowInstructionsCmd.Flags().StringVar(&workflowArtifact, "artifact", "", "artifact id (required)")
	workflowInstructionsCmd.MarkFlagRequired("artifact")

	workflowCmd.AddCommand(workflowInstructionsCmd, workflowApplyCmd)
	rootCmd.AddCommand(workflowCmd)
}

func resolveChangeAndSchema(changeArg string) (catalog.Change, workflow.ResolvedSchema, error) {
	cfg, err := loadConfigCLI()
	if err != nil {
		return catalog.Change{}, workflow.ResolvedSchema{}, err
	}
	change, err := catalog.ResolveChange(cfg.SpoolDir(), changeArg)
	if err != nil {
		return catalog.Change{}, workflow.ResolvedSchema{}, err
	}
	schemaName, err := workflow.ReadChangeSchema(change.Path)
	if err != nil {
		return catalog.Change{}, workflow.ResolvedSchema{}, err
	}
	resolved, err := workflow.ResolveSchema(cfg.SpoolDir(), schemaName)
	if err != nil {
		return catalog.Change{}, workflow.ResolvedSchema{}, err
	}
	return change, resolved, nil
}

func runWorkflowInstructions(cmd *cobra.Command, args []string) error {
	change, resolved, err := resolveChangeAndSchema(workflowChange)
	if err != nil {
		return err
	}
	resp, err := workflow.ResolveInstructions(change.ID.Canonical(), resolved, change.Path, workflowArtifact)
	if err != nil {
		return err
	}
	if workflowJSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}
	fmt.Printf("artifact %s (%s)\n", resp.ArtifactID, resp.SchemaName)
	fmt.Printf("  output:      %s\n", resp.OutputPath)
	fmt.Printf("  instruction: %s\n", resp.Instruction)
	for _, dep := range resp.Dependencies {
		fmt.Printf("  depends on:  %-12s done=%v %s\n", dep.ID, dep.Done, dep.Path)
	}
	for _, u := range resp.Unlocks {
		fmt.Printf("  unlocks:     %s\n", u)
	}
	return nil
}

func runWorkflowApply(cmd *cobra.Command, args []string) error {
	change, resolved, err := resolveChangeAndSchema(workflowChange)
	if err != nil {
		return err
	}
	resp, err := workflow.ComputeApplyInstructions(change.ID.Canonical(), resolved, change.Path)
	if err != nil {
		return err
	}
	if workflowJSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}
	fmt.Printf("change %s: %s\n", change.ID.Canonical(), resp.State.String())
	fmt.Println(resp.Instruction)
	if len(resp.MissingArtifacts) > 0 {
		fmt.Printf("missing: %v\n", resp.MissingArtifacts)
	}
	if resp.TracksFile {
		fmt.Printf("progress: %d/%d complete\n", resp.Progress.Complete, resp.Progress.Total)
	}
	for name, path := range resp.ContextFiles {
		fmt.Printf("context: %-12s %s\n", name, filepath.Join(change.Path, path))
	}
	return nil
}
