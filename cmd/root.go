package cmd

import (
	"fmt"
	"os"
	"tasklens/internal/config"
	"tasklens/internal/logging"
	"tasklens/internal/workspace"
	"tasklens/tui"

	"github.com/spf13/cobra"
)

var taskFile string

var rootCmd = &cobra.Command{
	Use:   "tasklens [tasks.md]",
	Short: "Tasklens overlays actionable affordances on markdown checklists",
	Long: `Tasklens opens a markdown task checklist and overlays each task line
with actionable affordances: start a task to hand it off to a chat
surface, watch the checkbox track the execution, retry or abort it.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Detect workspace
		workspacePath, err := workspace.Detect()
		if err != nil {
			fmt.Printf("Error detecting workspace: %v\n", err)
			os.Exit(1)
		}

		// Load configuration
		cfg, err := config.Load(workspacePath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		// Ensure .tasklens directory exists
		stateDir, err := workspace.EnsureStateDir(workspacePath)
		if err != nil {
			fmt.Printf("Error creating .tasklens directory: %v\n", err)
			os.Exit(1)
		}

		logger, err := logging.New(cfg.Logger, stateDir)
		if err != nil {
			fmt.Printf("Error building logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		path := taskFile
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			path, err = chooseTaskFile(workspacePath)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
		}

		if err := tui.Run(tui.Options{
			WorkspacePath: workspacePath,
			StateDir:      stateDir,
			TaskFile:      path,
			Config:        cfg,
			Logger:        logger,
		}); err != nil {
			fmt.Printf("Error starting TUI: %v\n", err)
			os.Exit(1)
		}
	},
}

// chooseTaskFile picks the workspace's task file when none was given on the
// command line. One match is unambiguous; several need an explicit choice.
func chooseTaskFile(workspacePath string) (string, error) {
	files, err := workspace.FindTaskFiles(workspacePath)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no tasks.md file found under %s", workspacePath)
	case 1:
		return files[0], nil
	default:
		fmt.Println("Multiple task files found, pass one explicitly:")
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
		return "", fmt.Errorf("ambiguous task file")
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Configure command line flags
	rootCmd.Flags().StringVarP(&taskFile, "file", "f", "", "Path to the task checklist to open")

	// Add subcommands
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(steeringCmd)
	rootCmd.AddCommand(configCmd)
}
