// package cli implements the spool command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/withakay/spool-go/internal/config"
	"github.com/withakay/spool-go/internal/telemetry"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ANSI color codes for consistent theming.
const (
	reset     = "\033[0m"
	dim       = "\033[38;5;245m"
	whiteBold = "\033[1;37m"
	gray      = "\033[38;5;240m"
	moduleClr = "\033[38;5;220m" // gold/yellow
	changeClr = "\033[38;5;39m"  // bright cyan
	taskClr   = "\033[38;5;213m" // bright pink
)

// banner returns the spool ASCII art banner with a blue-to-black gradient.
func banner() string {
	colors := []string{
		"\033[38;5;39m",  // bright cyan
		"\033[38;5;32m",  // cyan
		"\033[38;5;25m",  // blue
		"\033[38;5;24m",  // dark blue
		"\033[38;5;238m", // near black
	}

	lines := []string{
		"███████╗██████╗  ██████╗  ██████╗ ██╗     ",
		"██╔════╝██╔══██╗██╔═══██╗██╔═══██╗██║     ",
		"███████╗██████╔╝██║   ██║██║   ██║██║     ",
		"╚════██║██╔═══╝ ██║   ██║██║   ██║██║     ",
		"███████║██║     ╚██████╔╝╚██████╔╝███████╗",
	}

	var result string
	for i, line := range lines {
		result += "                " + colors[i] + line + reset + "\n"
	}
	result += "\n"
	result += "           " + dim + "A versioned knowledge base for spec-driven change" + reset + "\n"
	return result
}

// flowDiagram returns the colorized knowledge-base layout diagram.
func flowDiagram() string {
	return whiteBold + "Knowledge base layout:" + reset + `
` + gray + `┌────────────┐    ┌────────────┐    ┌────────┐` + reset + `
` + gray + `│ ` + moduleClr + `Module` + reset + gray + `     │ ─▶ │ ` + changeClr + `Change` + reset + gray + `     │ ─▶ │ ` + taskClr + `Tasks` + reset + gray + ` │` + reset + `
` + gray + `└────────────┘    └────────────┘    └────────┘` + reset + `

  1. ` + moduleClr + `Module` + reset + dim + `  — a stable grouping of related work (modules/<NNN>_<name>/)` + reset + `
  2. ` + changeClr + `Change` + reset + dim + `  — a proposal, design and spec deltas for one unit of work` + reset + `
  3. ` + taskClr + `Tasks` + reset + dim + `   — the wave-based breakdown an agent or human executes` + reset
}

var rootCmd = &cobra.Command{
	Use:   "spool",
	Short: "spool is a CLI engine for spec-driven development",
	Long: banner() + `
spool manages a versioned, file-based knowledge base of modules,
changes, specs and tasks, so that humans and agents can work from the
same durable record of what changed and why.

` + flowDiagram(),
	Version: Version,
}

// Execute runs the root command, wrapped in component J's session
// telemetry: a command_start event before dispatch and a command_end
// event (success or error) once it returns, so every invocation is
// recorded the same way regardless of which subcommand runs or whether it
// fails.
func Execute() {
	projectPath, spoolDir := telemetryPaths()
	rec := telemetry.NewRecorder(projectPath, spoolDir, strings.Join(os.Args[1:], " "))
	rec.Start()

	err := rootCmd.Execute()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	rec.End(outcome)

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// telemetryPaths resolves the project root and spool directory used to
// scope the telemetry recorder, falling back to the working directory and
// its default ".spool" subdirectory when no project has been initialized
// yet (e.g. during "spool init" itself).
func telemetryPaths() (projectPath, spoolDir string) {
	cwd, _ := os.Getwd()
	root, err := config.FindProjectRoot()
	if err != nil {
		root = cwd
	}
	return root, filepath.Join(root, config.SpoolDirName)
}

// commandOrder defines the display order of commands in help.
var commandOrder = map[string]int{
	"init":       1,
	"create":     10,
	"list":       11,
	"show":       12,
	"validate":   13,
	"tasks":      14,
	"workflow":   15,
	"archive":    20,
	"config":     30,
	"completion": 90,
	"help":       91,
}

func init() {
	rootCmd.SetVersionTemplate("spool version {{.Version}}\n")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		sort.SliceStable(cmd.Commands(), func(i, j int) bool {
			iOrder, iOk := commandOrder[cmd.Commands()[i].Name()]
			jOrder, jOk := commandOrder[cmd.Commands()[j].Name()]
			if !iOk {
				iOrder = 50
			}
			if !jOk {
				jOrder = 50
			}
			return iOrder < jOrder
		})
		defaultHelp(cmd, args)
	})

	defaultUsage := rootCmd.UsageFunc()
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		sort.SliceStable(cmd.Commands(), func(i, j int) bool {
			iOrder, iOk := commandOrder[cmd.Commands()[i].Name()]
			jOrder, jOk := commandOrder[cmd.Commands()[j].Name()]
			if !iOk {
				iOrder = 50
			}
			if !jOk {
				jOrder = 50
			}
			return iOrder < jOrder
		})
		return defaultUsage(cmd)
	})
}
