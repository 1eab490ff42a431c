package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Eighth-block glyphs, index = filled eighths.
var barGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// BarChart draws one vertical bar per sample.
type BarChart struct {
	title   string
	samples []XY
}

// NewBar builds a bar chart.
func NewBar(title string, samples []XY) *BarChart {
	return &BarChart{title: title, samples: samples}
}

func (c *BarChart) Kind() Kind    { return KindBar }
func (c *BarChart) Title() string { return c.title }
func (c *BarChart) Len() int      { return len(c.samples) }

// Render draws bars bottom-up with day labels underneath. Bars are scaled from zero
// (or the minimum, when negative) to the maximum value. Every sample gets a bar; when
// labelled columns do not fit the width, bars shrink to one column and only the first
// and last days are labelled.
func (c *BarChart) Render(width, height int) string {
	if len(c.samples) == 0 {
		return ""
	}
	if height <= 0 {
		height = defaultHeight
	}
	samples := c.samples
	colWidth := barColumnWidth(samples)
	compact := width > 0 && len(samples)*colWidth > width
	if compact {
		colWidth = 1
	}

	minVal, maxVal := barRange(samples)
	span := maxVal - minVal
	levels := make([]int, len(samples))
	for i, s := range samples {
		if span <= 0 {
			continue
		}
		levels[i] = int(math.Round((s.Y - minVal) / span * float64(height*8)))
	}

	lines := make([]string, 0, height+2)
	lines = append(lines, c.header(maxVal))
	for row := height - 1; row >= 0; row-- {
		var b strings.Builder
		for i := range samples {
			filled := levels[i] - row*8
			switch {
			case filled >= 8:
				filled = 8
			case filled < 0:
				filled = 0
			}
			glyph := string(barGlyphs[filled])
			b.WriteString(padRight(glyph, colWidth))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	if compact {
		lines = append(lines, dayAxis(samples, len(samples)))
		return strings.Join(lines, "\n")
	}
	var axis strings.Builder
	for _, s := range samples {
		axis.WriteString(padRight(strconv.Itoa(s.X), colWidth))
	}
	lines = append(lines, strings.TrimRight(axis.String(), " "))
	return strings.Join(lines, "\n")
}

func (c *BarChart) header(maxVal float64) string {
	return fmt.Sprintf("%s (max %s)", c.title, formatValue(maxVal))
}

func barRange(samples []XY) (float64, float64) {
	minVal, maxVal := 0.0, 0.0
	for _, s := range samples {
		if s.Y < minVal {
			minVal = s.Y
		}
		if s.Y > maxVal {
			maxVal = s.Y
		}
	}
	return minVal, maxVal
}

func barColumnWidth(samples []XY) int {
	w := 1
	for _, s := range samples {
		if lw := runewidth.StringWidth(strconv.Itoa(s.X)); lw > w {
			w = lw
		}
	}
	return w + 1
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
