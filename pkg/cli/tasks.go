package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/catalog"
	"github.com/withakay/spool-go/internal/tasks"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and mutate a change's tasks.md",
}

func init() {
	tasksCmd.AddCommand(
		tasksStatusCmd, tasksNextCmd, tasksShowCmd,
		tasksStartCmd, tasksCompleteCmd, tasksShelveCmd, tasksUnshelveCmd,
	)
	rootCmd.AddCommand(tasksCmd)
}

func readChangeTasks(changeArg string) (*catalog.Change, string, tasks.TasksParseResult, error) {
	cfg, err := loadConfigCLI()
	if err != nil {
		return nil, "", tasks.TasksParseResult{}, err
	}
	change, err := catalog.ResolveChange(cfg.SpoolDir(), changeArg)
	if err != nil {
		return nil, "", tasks.TasksParseResult{}, err
	}
	tasksPath := filepath.Join(change.Path, "tasks.md")
	data, err := os.ReadFile(tasksPath)
	if err != nil {
		return nil, "", tasks.TasksParseResult{}, fmt.Errorf("reading %s: %w", tasksPath, err)
	}
	result := tasks.Parse(string(data))
	return &change, tasksPath, result, nil
}

var tasksStatusCmd = &cobra.Command{
	Use:   "status <change>",
	Short: "Show task progress for a change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, result, err := readChangeTasks(args[0])
		if err != nil {
			return err
		}
		progress := tasks.ComputeProgress(result.Tasks)
		fmt.Printf("%d total, %d complete, %d in-progress, %d pending, %d shelved\n",
			progress.Total, progress.Complete, progress.InProgress, progress.Pending, progress.Shelved)
		for _, d := range result.Diagnostics {
			fmt.Printf("  [%s] %s\n", d.Level.String(), d.Message)
		}
		return nil
	},
}

var tasksNextCmd = &cobra.Command{
	Use:   "next <change>",
	Short: "Show the tasks ready to start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, result, err := readChangeTasks(args[0])
		if err != nil {
			return err
		}
		ready, blocked := tasks.ComputeReadyBlocked(result)
		if len(ready) == 0 {
			fmt.Println("no tasks ready")
		}
		for _, t := range ready {
			fmt.Printf("ready    %-20s %s\n", t.ID, t.Name)
		}
		for _, b := range blocked {
			fmt.Printf("blocked  %-20s %s (%v)\n", b.Task.ID, b.Task.Name, b.Blockers)
		}
		return nil
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <change> <task-id>",
	Short: "Show one task's detail",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, result, err := readChangeTasks(args[0])
		if err != nil {
			return err
		}
		for _, t := range result.Tasks {
			if t.ID != args[1] {
				continue
			}
			fmt.Printf("%s: %s\n", t.ID, t.Name)
			fmt.Printf("  status:       %s\n", t.Status.String())
			fmt.Printf("  wave:         %d\n", t.Wave)
			fmt.Printf("  dependencies: %v\n", t.Dependencies)
			fmt.Printf("  files:        %v\n", t.Files)
			fmt.Printf("  action:       %s\n", t.Action)
			fmt.Printf("  verify:       %s\n", t.Verify)
			fmt.Printf("  done when:    %s\n", t.DoneWhen)
			return nil
		}
		return fmt.Errorf("task %q not found in change %q", args[1], args[0])
	},
}

func mutateTaskStatus(changeArg, taskID string, status tasks.TaskStatus) error {
	change, tasksPath, result, err := readChangeTasks(changeArg)
	if err != nil {
		return err
	}

	found := false
	for _, t := range result.Tasks {
		if t.ID == taskID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("task %q not found in change %q", taskID, change.ID.Canonical())
	}

	data, err := os.ReadFile(tasksPath)
	if err != nil {
		return err
	}
	updated, err := tasks.SetStatus(string(data), taskID, status, time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(tasksPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tasksPath, err)
	}
	fmt.Printf("%s -> %s\n", taskID, status.String())
	return nil
}

var tasksStartCmd = &cobra.Command{
	Use:   "start <change> <task-id>",
	Short: "Mark a task in-progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateTaskStatus(args[0], args[1], tasks.StatusInProgress)
	},
}

var tasksCompleteCmd = &cobra.Command{
	Use:   "complete <change> <task-id>",
	Short: "Mark a task complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateTaskStatus(args[0], args[1], tasks.StatusComplete)
	},
}

var tasksShelveCmd = &cobra.Command{
	Use:   "shelve <change> <task-id>",
	Short: "Shelve a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateTaskStatus(args[0], args[1], tasks.StatusShelved)
	},
}

var tasksUnshelveCmd = &cobra.Command{
	Use:   "unshelve <change> <task-id>",
	Short: "Return a shelved task to pending",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateTaskStatus(args[0], args[1], tasks.StatusPending)
	},
}
