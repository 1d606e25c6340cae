package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/catalog"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <change>",
	Short: "Move a change into changes/archive/<date>-<id>/",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigCLI()
	if err != nil {
		return err
	}
	change, err := catalog.ResolveChange(cfg.SpoolDir(), args[0])
	if err != nil {
		return err
	}

	archiveDir := filepath.Join(cfg.ChangesDir(), "archive")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	dest := filepath.Join(archiveDir, time.Now().UTC().Format("2006-01-02")+"-"+change.DirName)
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("archive destination %s already exists", dest)
	}

	if err := os.Rename(change.Path, dest); err != nil {
		return fmt.Errorf("archiving %s: %w", change.DirName, err)
	}

	fmt.Printf("Archived %s -> %s\n", change.DirName, dest)
	return nil
}
