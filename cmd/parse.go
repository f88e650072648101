package cmd

import (
	"fmt"
	"os"
	"tasklens/internal/document"
	"tasklens/internal/grammar"
	"tasklens/internal/taskcache"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <tasks.md>",
	Short: "Parse a task file and print what tasklens sees",
	Long:  `Parses a markdown checklist and prints each recognized task with its line number and state, for checking why a line does or does not get affordances.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := document.NewStore(nil)
		doc, err := store.Open(args[0])
		if err != nil {
			fmt.Printf("Error opening file: %v\n", err)
			os.Exit(1)
		}

		cache := taskcache.New(0, 0, nil)
		if !cache.IsTaskDocument(doc) {
			fmt.Printf("%s is not recognized as a task document\n", args[0])
			os.Exit(1)
		}

		tasks := cache.Parse(doc)
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return
		}

		done := 0
		for _, task := range tasks {
			state := "pending"
			switch task.State {
			case grammar.StateExecuting:
				state = "executing"
			case grammar.StateDone:
				state = "done"
				done++
			}
			fmt.Printf("  line %-4d %-10s %s\n", task.Line+1, state, task.Text)
		}
		fmt.Printf("\n%d tasks, %d done\n", len(tasks), done)
	},
}
