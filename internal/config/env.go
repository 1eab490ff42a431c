package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvListURL         = "AGROMIND_LIST_URL"
	EnvChatURL         = "AGROMIND_CHAT_URL"
	EnvChatDecoder     = "AGROMIND_CHAT_DECODER"
	EnvUserAvatar      = "AGROMIND_USER_AVATAR"
	EnvAssistantAvatar = "AGROMIND_ASSISTANT_AVATAR"
	EnvHistory         = "AGROMIND_HISTORY"
)

// LoadEnv loads the given .env files into the process environment. Missing files are skipped
// and variables already set win over file values.
func LoadEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ApplyEnv overlays non-empty environment variables onto cfg.
func (cfg *FileConfig) ApplyEnv() error {
	setString(&cfg.List.BaseURL, EnvListURL)
	setString(&cfg.Chat.BaseURL, EnvChatURL)
	setString(&cfg.Chat.Decoder, EnvChatDecoder)
	setString(&cfg.UI.UserAvatar, EnvUserAvatar)
	setString(&cfg.UI.AssistantAvatar, EnvAssistantAvatar)
	if v := strings.TrimSpace(os.Getenv(EnvHistory)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvHistory, v, err)
		}
		cfg.History.Enabled = &enabled
	}
	return nil
}

func setString(target **string, name string) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return
	}
	*target = &v
}
