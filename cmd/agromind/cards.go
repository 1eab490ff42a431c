package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/agromind/internal/chart"
	"github.com/verte-zerg/agromind/internal/config"
	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/remote"
	"github.com/verte-zerg/agromind/internal/session"
)

const (
	maxCardsWidth    = 100
	cardsChartHeight = 4
)

var (
	cardsStart string
	cardsEnd   string
	cardsColor bool
)

func newCardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print the records for a date range",
		Args:  cobra.NoArgs,
		RunE:  runCardsCmd,
	}
	cmd.Flags().StringVar(&cardsStart, "start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&cardsEnd, "end", "", "end date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&cardsColor, "color", false, "force colored charts")
	return cmd
}

func runCardsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	today := session.Day(time.Now())
	r := model.DateRange{Start: today, End: today}
	if cardsStart != "" {
		if r.Start, err = config.ParseDate(cardsStart); err != nil {
			return fmt.Errorf("invalid --start value: %w", err)
		}
	}
	if cardsEnd != "" {
		if r.End, err = config.ParseDate(cardsEnd); err != nil {
			return fmt.Errorf("invalid --end value: %w", err)
		}
	}
	if err := session.ValidateRange(r, session.Day(cfg.EarliestDate), today); err != nil {
		return fmt.Errorf("invalid range: %w", err)
	}

	client, err := newListClient(cfg)
	if err != nil {
		return err
	}
	records, err := client.Fetch(cmd.Context(), r)
	if err != nil {
		return fmt.Errorf("list fetch failed (%s): %w", remote.Kind(err), err)
	}

	out := cmd.OutOrStdout()
	width := chart.TerminalWidth()
	if width > maxCardsWidth {
		width = maxCardsWidth
	}
	return printCards(out, records, width, chart.ShouldUseColor(out, cardsColor))
}

func printCards(w io.Writer, records []model.ListRecord, width int, useColor bool) error {
	rangeColor := color.New(color.FgHiBlack)
	titleColor := color.New(color.Bold)
	for _, c := range []*color.Color{rangeColor, titleColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	if len(records) == 0 {
		b.WriteString("No records.\n")
	}
	for i, rec := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(rangeColor.Sprint(rec.Range) + "\n")
		b.WriteString(titleColor.Sprint(rec.Title) + "\n")
		b.WriteString(wordwrap.String(rec.Content, width) + "\n")
		for _, c := range chart.ForRecord(rec) {
			rendered := c.Render(width, cardsChartHeight)
			if useColor {
				rendered = chart.Colorize(c, rendered)
			}
			b.WriteString("\n" + rendered + "\n")
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
