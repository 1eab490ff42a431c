// Package main provides the CLI entrypoint for agromind.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/agromind/internal/chatapi"
	"github.com/verte-zerg/agromind/internal/config"
	"github.com/verte-zerg/agromind/internal/listapi"
	"github.com/verte-zerg/agromind/internal/logger"
	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/session"
	"github.com/verte-zerg/agromind/internal/store"
	"github.com/verte-zerg/agromind/internal/tui"
)

const version = "1.0"

var (
	flagConfigPath  string
	flagListURL     string
	flagChatURL     string
	flagDecoder     string
	flagListTimeout string
	flagChatTimeout string
	flagEarliest    string
	flagLang        string
	flagHistory     bool
	flagDebug       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "agromind",
		Short:         "Farm dashboard with an agronomy assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}
	rootCmd.SetVersionTemplate("agromind {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/agromind/config.toml)")
	flags.StringVar(&flagListURL, "list-url", config.DefaultListURL, "list endpoint base URL")
	flags.StringVar(&flagChatURL, "chat-url", config.DefaultChatURL, "chat endpoint URL")
	flags.StringVar(&flagDecoder, "decoder", config.DefaultChatDecoder, "chat decoder ("+strings.Join(chatapi.DecoderNames(), "|")+")")
	flags.StringVar(&flagListTimeout, "list-timeout", config.DefaultListTimeout.String(), "list request timeout")
	flags.StringVar(&flagChatTimeout, "chat-timeout", config.DefaultChatTimeout.String(), "chat request timeout")
	flags.StringVar(&flagEarliest, "earliest", config.DefaultEarliestDate, "earliest selectable date (YYYY-MM-DD)")
	flags.StringVar(&flagLang, "lang", config.DefaultLanguage, "interface language (en|zh)")
	flags.BoolVar(&flagHistory, "history", false, "store chat history in the local database")
	flags.BoolVar(&flagDebug, "debug", false, "debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// resolveConfig layers defaults, the config file, .env and the environment, then flags.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	if _, err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return model.Config{}, err
	}
	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := fileCfg.ApplyEnv(); err != nil {
		return model.Config{}, err
	}
	applyStringFlag(cmd, "list-url", &fileCfg.List.BaseURL, flagListURL)
	applyStringFlag(cmd, "list-timeout", &fileCfg.List.Timeout, flagListTimeout)
	applyStringFlag(cmd, "chat-url", &fileCfg.Chat.BaseURL, flagChatURL)
	applyStringFlag(cmd, "decoder", &fileCfg.Chat.Decoder, flagDecoder)
	applyStringFlag(cmd, "chat-timeout", &fileCfg.Chat.Timeout, flagChatTimeout)
	applyStringFlag(cmd, "earliest", &fileCfg.UI.EarliestDate, flagEarliest)
	applyStringFlag(cmd, "lang", &fileCfg.UI.Language, flagLang)
	applyBoolFlag(cmd, "history", &fileCfg.History.Enabled, flagHistory)

	cfg, err := config.Resolve(fileCfg)
	if err != nil {
		return model.Config{}, err
	}
	cfg.Debug = flagDebug
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newListClient(cfg model.Config) (*listapi.Client, error) {
	return listapi.New(listapi.Config{BaseURL: cfg.ListBaseURL, Timeout: cfg.ListTimeout})
}

func newChatClient(cfg model.Config) (*chatapi.Client, error) {
	return chatapi.New(chatapi.Config{BaseURL: cfg.ChatBaseURL, Decoder: cfg.ChatDecoder, Timeout: cfg.ChatTimeout})
}

func openLogger(cfg model.Config) *zap.Logger {
	log, err := logger.New(config.DefaultLogPath(), cfg.Debug)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return logger.Nop()
	}
	return log
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := openLogger(cfg)
	defer logger.Sync(log)

	lister, err := newListClient(cfg)
	if err != nil {
		return err
	}
	asker, err := newChatClient(cfg)
	if err != nil {
		return err
	}

	sess := session.New(session.Options{Earliest: cfg.EarliestDate})
	if cfg.HistoryEnabled {
		st, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()
		sess.Observe(store.NewRecorder(st, sess.ID(), log).Observe)
	}
	log.Info("dashboard started",
		zap.String("session", sess.ID()),
		zap.String("list_url", cfg.ListBaseURL),
		zap.String("chat", asker.Name()),
		zap.Bool("history", cfg.HistoryEnabled),
	)

	m := tui.NewModel(tui.Options{
		Session: sess,
		Records: lister,
		Chat:    asker,
		Config:  cfg,
		Logger:  log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	log.Info("dashboard closed", zap.String("session", sess.ID()), zap.Int("turns", len(sess.Turns())))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target **string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v := value
	*target = &v
}

func applyBoolFlag(cmd *cobra.Command, name string, target **bool, value bool) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v := value
	*target = &v
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# agromind configuration
# Uncomment a value to enable it. Environment variables override the file
# and CLI flags override both.

[list]
# base-url = %q    # List endpoint, called as <base-url>/<start>/<end>
# timeout = %q

[chat]
# base-url = %q
# decoder = %q           # %s
# timeout = %q

[ui]
# earliest-date = %q
# language = %q                # en | zh
# user-avatar = %q
# assistant-avatar = %q

[history]
# enabled = false               # Store chat turns in %s
`,
		config.DefaultListURL,
		config.DefaultListTimeout.String(),
		config.DefaultChatURL,
		config.DefaultChatDecoder,
		strings.Join(chatapi.DecoderNames(), " | "),
		config.DefaultChatTimeout.String(),
		config.DefaultEarliestDate,
		config.DefaultLanguage,
		config.DefaultUserAvatar,
		config.DefaultAssistantAvatar,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
