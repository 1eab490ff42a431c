package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/agromind/internal/chart"
	"github.com/verte-zerg/agromind/internal/config"
	"github.com/verte-zerg/agromind/internal/model"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	sessionColumns = []column{{title: "Session"}, {title: "Started"}, {title: "Turns", alignRight: true}}
	fetchColumns   = []column{
		{title: "Fetched"}, {title: "Start"}, {title: "End"},
		{title: "Records", alignRight: true}, {title: "Error"},
	}
)

var (
	historySession string
	historyFormat  string
	historyLimit   int
)

type sessionHistory struct {
	SessionID string           `json:"session_id" yaml:"session_id"`
	Turns     []model.ChatTurn `json:"turns" yaml:"turns"`
	Fetches   []model.FetchLog `json:"fetches" yaml:"fetches"`
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored chat sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySession, "session", "", "print one session's turns and fetches")
	cmd.Flags().StringVar(&historyFormat, "format", formatText, "output format (text|json|yaml)")
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "number of sessions to list (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(historyFormat))
	switch format {
	case formatText, formatJSON, formatYAML:
	default:
		return fmt.Errorf("--format must be text, json or yaml, got %q", historyFormat)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.HistoryEnabled {
		return fmt.Errorf("history is disabled; set [history] enabled = true, %s=1 or pass --history", config.EnvHistory)
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if historySession == "" {
		sessions, err := st.ListSessions(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		return writeSessions(out, format, sessions)
	}

	turns, err := st.ListTurns(ctx, historySession)
	if err != nil {
		return fmt.Errorf("failed to load turns: %w", err)
	}
	fetches, err := st.ListFetches(ctx, historySession)
	if err != nil {
		return fmt.Errorf("failed to load fetches: %w", err)
	}
	if len(turns) == 0 && len(fetches) == 0 {
		return fmt.Errorf("session %q not found", historySession)
	}
	hist := sessionHistory{SessionID: historySession, Turns: turns, Fetches: fetches}
	return writeSessionHistory(out, format, hist, chart.ShouldUseColor(out, false))
}

func writeSessions(w io.Writer, format string, sessions []model.SessionSummary) error {
	switch format {
	case formatJSON:
		return writeJSON(w, sessions)
	case formatYAML:
		return writeYAML(w, sessions)
	}
	if len(sessions) == 0 {
		return writeLines(w, []string{"No sessions stored."})
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{s.SessionID, s.StartedAt.Local().Format("2006-01-02 15:04"), strconv.Itoa(s.Turns)})
	}
	return writeLines(w, formatTable(sessionColumns, rows))
}

func writeSessionHistory(w io.Writer, format string, hist sessionHistory, useColor bool) error {
	switch format {
	case formatJSON:
		return writeJSON(w, hist)
	case formatYAML:
		return writeYAML(w, hist)
	}

	userColor := color.New(color.FgYellow, color.Bold)
	assistantColor := color.New(color.FgGreen, color.Bold)
	for _, c := range []*color.Color{userColor, assistantColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	lines := []string{"Session " + hist.SessionID, ""}
	for _, turn := range hist.Turns {
		label := userColor.Sprint(string(turn.Role))
		if turn.Role == model.RoleAssistant {
			label = assistantColor.Sprint(string(turn.Role))
		}
		lines = append(lines, label+": "+turn.Content)
	}
	if len(hist.Fetches) > 0 {
		rows := make([][]string, 0, len(hist.Fetches))
		for _, f := range hist.Fetches {
			rows = append(rows, []string{
				f.FetchedAt.Local().Format("2006-01-02 15:04:05"),
				f.Start,
				f.End,
				strconv.Itoa(f.Records),
				f.Err,
			})
		}
		lines = append(lines, "", "Fetches")
		lines = append(lines, formatTable(fetchColumns, rows)...)
	}
	return writeLines(w, lines)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to write yaml: %w", err)
	}
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
