// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	List    ListConfig    `toml:"list"`
	Chat    ChatConfig    `toml:"chat"`
	UI      UIConfig      `toml:"ui"`
	History HistoryConfig `toml:"history"`
}

// ListConfig maps list API settings.
type ListConfig struct {
	BaseURL *string `toml:"base-url"`
	Timeout *string `toml:"timeout"`
}

// ChatConfig maps chat API settings.
type ChatConfig struct {
	BaseURL *string `toml:"base-url"`
	Decoder *string `toml:"decoder"`
	Timeout *string `toml:"timeout"`
}

// UIConfig maps display settings.
type UIConfig struct {
	EarliestDate    *string `toml:"earliest-date"`
	Language        *string `toml:"language"`
	UserAvatar      *string `toml:"user-avatar"`
	AssistantAvatar *string `toml:"assistant-avatar"`
}

// HistoryConfig maps chat history persistence.
type HistoryConfig struct {
	Enabled *bool `toml:"enabled"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
