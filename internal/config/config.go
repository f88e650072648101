// Package config loads tasklens configuration: defaults in code, optional
// .tasklens/config.yaml overrides, TASKLENS_* environment overrides on top.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tasklens/internal/workspace"
)

// Config holds all tasklens configuration.
type Config struct {
	Execution ExecutionConfig
	Cache     CacheConfig
	Render    RenderConfig
	Chat      ChatConfig
	Logger    LoggerConfig
}

// ExecutionConfig tunes the execution lifecycle.
type ExecutionConfig struct {
	// Timeout is how long a started task may stay in flight before its
	// checkbox is reverted and its bookkeeping dropped.
	Timeout time.Duration
}

// CacheConfig tunes the document task cache.
type CacheConfig struct {
	TTL          time.Duration
	MaxDocuments int
}

// RenderConfig tunes affordance rendering.
type RenderConfig struct {
	// Debounce coalesces bursts of document-change re-renders.
	Debounce     time.Duration
	SuccessFlash time.Duration
	FailureFlash time.Duration
}

// ChatConfig configures the dispatch chain's chat mechanisms.
type ChatConfig struct {
	// Direct enables the direct chat-completion strategy.
	Direct bool
	APIKey string
	// BaseURL points the chat client at an OpenAI-compatible endpoint.
	BaseURL string
	Model   string
	// SettleDelay is the pause between paste-and-submit steps, giving the
	// chat surface time to settle.
	SettleDelay time.Duration
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Execution: ExecutionConfig{Timeout: 60 * time.Second},
		Cache:     CacheConfig{TTL: 10 * time.Minute, MaxDocuments: 64},
		Render: RenderConfig{
			Debounce:     100 * time.Millisecond,
			SuccessFlash: 2 * time.Second,
			FailureFlash: 3 * time.Second,
		},
		Chat: ChatConfig{
			Model:       "gpt-4o",
			SettleDelay: 150 * time.Millisecond,
		},
		Logger: LoggerConfig{Level: "info", Encoding: "json"},
	}
}

// Load reads configuration for a workspace.
func Load(workspacePath string) (*Config, error) {
	def := Default()

	v := viper.New()
	v.SetDefault("execution.timeout", def.Execution.Timeout)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("cache.max_documents", def.Cache.MaxDocuments)
	v.SetDefault("render.debounce", def.Render.Debounce)
	v.SetDefault("render.success_flash", def.Render.SuccessFlash)
	v.SetDefault("render.failure_flash", def.Render.FailureFlash)
	v.SetDefault("chat.direct", false)
	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.base_url", "")
	v.SetDefault("chat.model", def.Chat.Model)
	v.SetDefault("chat.settle_delay", def.Chat.SettleDelay)
	v.SetDefault("logger.level", def.Logger.Level)
	v.SetDefault("logger.encoding", def.Logger.Encoding)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(workspacePath, workspace.StateDir))
	v.SetEnvPrefix("TASKLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return &Config{
		Execution: ExecutionConfig{Timeout: v.GetDuration("execution.timeout")},
		Cache: CacheConfig{
			TTL:          v.GetDuration("cache.ttl"),
			MaxDocuments: v.GetInt("cache.max_documents"),
		},
		Render: RenderConfig{
			Debounce:     v.GetDuration("render.debounce"),
			SuccessFlash: v.GetDuration("render.success_flash"),
			FailureFlash: v.GetDuration("render.failure_flash"),
		},
		Chat: ChatConfig{
			Direct:      v.GetBool("chat.direct"),
			APIKey:      v.GetString("chat.api_key"),
			BaseURL:     v.GetString("chat.base_url"),
			Model:       v.GetString("chat.model"),
			SettleDelay: v.GetDuration("chat.settle_delay"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("logger.level"),
			Encoding: v.GetString("logger.encoding"),
		},
	}, nil
}
