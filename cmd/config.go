package cmd

import (
	"fmt"
	"os"
	"tasklens/internal/config"
	"tasklens/internal/workspace"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective tasklens configuration",
	Long:  `Prints the configuration tasklens would run with: built-in defaults, overridden by .tasklens/config.yaml, overridden by TASKLENS_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, err := workspace.Detect()
		if err != nil {
			fmt.Printf("Error detecting workspace: %v\n", err)
			os.Exit(1)
		}

		cfg, err := config.Load(workspacePath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("execution.timeout:    %s\n", cfg.Execution.Timeout)
		fmt.Printf("cache.ttl:            %s\n", cfg.Cache.TTL)
		fmt.Printf("cache.max_documents:  %d\n", cfg.Cache.MaxDocuments)
		fmt.Printf("render.debounce:      %s\n", cfg.Render.Debounce)
		fmt.Printf("render.success_flash: %s\n", cfg.Render.SuccessFlash)
		fmt.Printf("render.failure_flash: %s\n", cfg.Render.FailureFlash)
		fmt.Printf("chat.direct:          %t\n", cfg.Chat.Direct)
		fmt.Printf("chat.model:           %s\n", cfg.Chat.Model)
		fmt.Printf("chat.settle_delay:    %s\n", cfg.Chat.SettleDelay)
		fmt.Printf("logger.level:         %s\n", cfg.Logger.Level)
		fmt.Printf("logger.encoding:      %s\n", cfg.Logger.Encoding)
	},
}
