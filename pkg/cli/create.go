package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/allocator"
	"github.com/withakay/spool-go/internal/config"
	"github.com/withakay/spool-go/internal/git"
	"github.com/withakay/spool-go/internal/ids"
	"github.com/withakay/spool-go/internal/prompt"
	"github.com/withakay/spool-go/internal/templates"
	"github.com/withakay/spool-go/internal/workflow"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new module or change",
}

var createChangeModule string
var createChangeSchema string
var createChangeInteractive bool
var createChangeBranch string

var createModuleCmd = &cobra.Command{
	Use:   "module <name>",
	Short: "Create a new module",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateModule,
}

var createChangeCmd = &cobra.Command{
	Use:   "change <name>",
	Short: "Create a new change under a module",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateChange,
}

func init() {
	createChangeCmd.Flags().StringVar(&createChangeModule, "module", "", "module id the change belongs to (required)")
	createChangeCmd.Flags().StringVar(&createChangeSchema, "schema", "", "workflow schema name (default: spec-driven)")
	createChangeCmd.Flags().BoolVar(&createChangeInteractive, "interactive", false, "prompt for the proposal summary instead of scaffolding a TODO placeholder")
	createChangeCmd.Flags().StringVar(&createChangeBranch, "branch", "", "create (or check out) a git branch for this change, branch-per-change convenience")
	createChangeCmd.MarkFlagRequired("module")

	createCmd.AddCommand(createModuleCmd)
	createCmd.AddCommand(createChangeCmd)
	rootCmd.AddCommand(createCmd)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func loadConfigCLI() (*config.Config, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	ctx, err := config.FromProcessEnv()
	if err != nil {
		return nil, err
	}
	return config.Load(ctx, root)
}

func runCreateModule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}

	slug := slugify(args[0])
	if slug == "" {
		return fmt.Errorf("module name %q produces an empty slug", args[0])
	}

	modulesDir := cfg.ModulesDir()
	entries, _ := os.ReadDir(modulesDir)
	next := 1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(e.Name(), "%03d_", &n); err == nil && n >= next {
			next = n + 1
		}
	}

	moduleNum, err := ids.ParseModuleID(fmt.Sprintf("%d", next))
	if err != nil {
		return err
	}
	dirName := ids.FormatModuleDir(moduleNum, slug)
	modulePath := filepath.Join(modulesDir, dirName)
	if err := os.MkdirAll(modulePath, 0o755); err != nil {
		return fmt.Errorf("creating module directory: %w", err)
	}

	modulePathFile := filepath.Join(modulePath, "module.md")
	if err := os.WriteFile(modulePathFile, []byte(templates.ModuleMd), 0o644); err != nil {
		return fmt.Errorf("writing module.md: %w", err)
	}

	fmt.Printf("Created module %s\n", dirName)
	return nil
}

func runCreateChange(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}

	moduleNum, err := ids.ParseModuleID(createChangeModule)
	if err != nil {
		return err
	}

	alloc := allocator.New(cfg.SpoolDir())
	changeNum, err := alloc.AllocateNext(moduleNum)
	if err != nil {
		return fmt.Errorf("allocating change number: %w", err)
	}

	slug := slugify(args[0])
	if slug == "" {
		return fmt.Errorf("change name %q produces an empty slug", args[0])
	}

	parsed, err := ids.ParseChangeID(fmt.Sprintf("%s-%d_%s", moduleNum, changeNum, slug))
	if err != nil {
		return err
	}

	changeDir := filepath.Join(cfg.ChangesDir(), parsed.Canonical())
	if err := os.MkdirAll(filepath.Join(changeDir, "specs"), 0o755); err != nil {
		return fmt.Errorf("creating change directory: %w", err)
	}

	schemaName := createChangeSchema
	if schemaName == "" {
		schemaName = cfg.DefaultSchema
	}
	if _, err := workflow.ResolveSchema(cfg.SpoolDir(), schemaName); err != nil {
		return fmt.Errorf("resolving schema %q: %w", schemaName, err)
	}

	if err := os.WriteFile(filepath.Join(changeDir, ".spool.yaml"), []byte(templates.SpoolYaml(schemaName)), 0o644); err != nil {
		return fmt.Errorf("writing .spool.yaml: %w", err)
	}
	proposalContent := templates.ProposalMd
	if createChangeInteractive {
		summary, err := prompt.MultilineAnswer("Summary> ")
		if err != nil {
			return fmt.Errorf("reading interactive summary: %w", err)
		}
		if summary != "" {
			proposalContent = strings.Replace(proposalContent,
				"<!-- TODO: 1-2 sentence summary of the change -->", summary, 1)
		}
	}
	if err := os.WriteFile(filepath.Join(changeDir, "proposal.md"), []byte(proposalContent), 0o644); err != nil {
		return fmt.Errorf("writing proposal.md: %w", err)
	}

	fmt.Printf("Created change %s (schema %s)\n", parsed.Canonical(), schemaName)

	if createChangeBranch != "" {
		if err := ensureChangeBranch(cfg.ProjectRoot, createChangeBranch); err != nil {
			return err
		}
	}

	return nil
}

// ensureChangeBranch creates (or checks out) the branch requested via
// --branch, a branch-per-change convenience for projects that keep one
// branch per change under review. It is a no-op outside a git repository
// rather than a hard failure, since --branch is opt-in.
func ensureChangeBranch(projectRoot, branchName string) error {
	if !git.IsRepo(projectRoot) {
		fmt.Fprintf(os.Stderr, "warning: --branch %q requested but %s is not a git repository; skipping\n", branchName, projectRoot)
		return nil
	}

	created, err := git.EnsureBranch(projectRoot, branchName, "")
	if err != nil {
		return fmt.Errorf("ensuring git branch %q: %w", branchName, err)
	}
	if created {
		fmt.Printf("Created and checked out branch %s\n", branchName)
	} else {
		fmt.Printf("Checked out branch %s\n", branchName)
	}
	return nil
}
