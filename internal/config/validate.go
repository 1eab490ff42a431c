package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/verte-zerg/agromind/internal/chatapi"
	"github.com/verte-zerg/agromind/internal/model"
)

// DateLayout is the user-facing date format.
const DateLayout = "2006-01-02"

// Defaults applied when neither flags, env nor the config file set a value.
const (
	DefaultListURL         = "http://localhost:5000/list"
	DefaultChatURL         = "http://localhost:5000/agent/chat"
	DefaultChatDecoder     = chatapi.DecoderStructured
	DefaultListTimeout     = 30 * time.Second
	DefaultChatTimeout     = 3 * time.Minute
	DefaultEarliestDate    = "2020-01-01"
	DefaultLanguage        = "en"
	DefaultUserAvatar      = "🧑‍🌾"
	DefaultAssistantAvatar = "🌱"
)

// ParseDate parses a YYYY-MM-DD day in local time.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.Local)
}

// Validate checks a resolved configuration.
func Validate(cfg model.Config) error {
	if err := validateURL("list base url", cfg.ListBaseURL); err != nil {
		return err
	}
	if err := validateURL("chat base url", cfg.ChatBaseURL); err != nil {
		return err
	}
	if _, err := chatapi.ParseDecoder(cfg.ChatDecoder); err != nil {
		return err
	}
	if cfg.ListTimeout <= 0 {
		return fmt.Errorf("list timeout must be > 0")
	}
	if cfg.ChatTimeout <= 0 {
		return fmt.Errorf("chat timeout must be > 0")
	}
	if cfg.EarliestDate.IsZero() {
		return fmt.Errorf("earliest date must be set")
	}
	if cfg.EarliestDate.After(time.Now()) {
		return fmt.Errorf("earliest date %s is in the future", cfg.EarliestDate.Format(DateLayout))
	}
	switch cfg.Language {
	case "en", "zh":
	default:
		return fmt.Errorf("language must be en or zh, got %q", cfg.Language)
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", name, raw)
	}
	return nil
}
