package dispatch

import (
	"fmt"
	"path/filepath"
	"strings"

	"tasklens/internal/grammar"
)

// BuildPrompt constructs the prompt string handed to the chat surface. It
// embeds the task text, its current status label and line number, and lists
// the steering documents the agent should consult. Steering files are listed
// by path only; their contents are never read here.
func BuildPrompt(task grammar.Task, referenceFiles []string) string {
	status := "Pending"
	if task.State == grammar.StateDone {
		status = "Done"
	}

	var b strings.Builder
	b.WriteString("Execute the following task from the markdown task list.\n\n")
	b.WriteString(fmt.Sprintf("Task: %s\n", task.Text))
	b.WriteString(fmt.Sprintf("Status: %s\n", status))
	b.WriteString(fmt.Sprintf("Line: %d\n", task.Line+1))

	if len(referenceFiles) > 0 {
		b.WriteString("\nConsult these steering documents before starting:\n")
		for _, f := range referenceFiles {
			b.WriteString(fmt.Sprintf("- %s\n", filepath.ToSlash(f)))
		}
	}

	b.WriteString("\nWhen the task is finished, mark its checkbox as done ([x]) in the task file.\n")
	return b.String()
}
