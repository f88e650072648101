package cmd

import (
	"fmt"
	"os"
	"tasklens/internal/steering"
	"tasklens/internal/workspace"

	"github.com/spf13/cobra"
)

var steeringCmd = &cobra.Command{
	Use:   "steering",
	Short: "List the steering documents referenced in prompts",
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, err := workspace.Detect()
		if err != nil {
			fmt.Printf("Error detecting workspace: %v\n", err)
			os.Exit(1)
		}

		files, err := steering.ReferenceFiles(workspacePath)
		if err != nil {
			fmt.Printf("Error listing steering files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No steering documents under %s/%s\n", workspacePath, steering.Dir)
			return
		}
		for _, f := range files {
			fmt.Println(f)
		}
	},
}
