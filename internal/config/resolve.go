package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/agromind/internal/model"
)

// Resolve fills unset values with defaults and parses durations and dates.
func Resolve(fc FileConfig) (model.Config, error) {
	cfg := model.Config{
		ListBaseURL:     stringOr(fc.List.BaseURL, DefaultListURL),
		ChatBaseURL:     stringOr(fc.Chat.BaseURL, DefaultChatURL),
		ChatDecoder:     stringOr(fc.Chat.Decoder, DefaultChatDecoder),
		Language:        strings.ToLower(stringOr(fc.UI.Language, DefaultLanguage)),
		UserAvatar:      stringOr(fc.UI.UserAvatar, DefaultUserAvatar),
		AssistantAvatar: stringOr(fc.UI.AssistantAvatar, DefaultAssistantAvatar),
	}
	if fc.History.Enabled != nil {
		cfg.HistoryEnabled = *fc.History.Enabled
	}

	var err error
	if cfg.ListTimeout, err = durationOr(fc.List.Timeout, DefaultListTimeout); err != nil {
		return model.Config{}, fmt.Errorf("invalid list timeout: %w", err)
	}
	if cfg.ChatTimeout, err = durationOr(fc.Chat.Timeout, DefaultChatTimeout); err != nil {
		return model.Config{}, fmt.Errorf("invalid chat timeout: %w", err)
	}
	if cfg.EarliestDate, err = ParseDate(stringOr(fc.UI.EarliestDate, DefaultEarliestDate)); err != nil {
		return model.Config{}, fmt.Errorf("invalid earliest date: %w", err)
	}
	return cfg, nil
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return fallback
	}
	return v
}

func durationOr(value *string, fallback time.Duration) (time.Duration, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(*value))
}
