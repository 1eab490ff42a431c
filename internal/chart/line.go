package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	defaultHeight = 4
	minWidth      = 8
)

// LineChart draws samples as a braille polyline positioned by day of month.
type LineChart struct {
	title   string
	samples []XY
}

// NewLine builds a line chart.
func NewLine(title string, samples []XY) *LineChart {
	return &LineChart{title: title, samples: samples}
}

func (c *LineChart) Kind() Kind    { return KindLine }
func (c *LineChart) Title() string { return c.title }
func (c *LineChart) Len() int      { return len(c.samples) }

// Render draws the polyline with a min/max header and first/last day labels.
func (c *LineChart) Render(width, height int) string {
	if len(c.samples) == 0 {
		return ""
	}
	if height <= 0 {
		height = defaultHeight
	}
	if width < minWidth {
		width = minWidth
	}

	minVal, maxVal := valueRange(c.samples)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}
	xs := dotColumns(c.samples, width*2)

	cells := makeCells(height, width)
	prevX, prevY := -1, -1
	for i, s := range c.samples {
		px := xs[i]
		py := valueToRow(s.Y, minVal, maxVal, height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				setBrailleDot(cells, dx, dy)
			})
		} else {
			setBrailleDot(cells, px, py)
		}
		prevX, prevY = px, py
	}

	lines := make([]string, 0, height+2)
	lines = append(lines, fmt.Sprintf("%s (min %s, max %s)", c.title, formatValue(minOf(c.samples)), formatValue(maxOf(c.samples))))
	for y := 0; y < height; y++ {
		var row strings.Builder
		for x := 0; x < width; x++ {
			row.WriteRune(brailleFromMask(cells[y][x]))
		}
		lines = append(lines, row.String())
	}
	lines = append(lines, dayAxis(c.samples, width))
	return strings.Join(lines, "\n")
}

// dotColumns spreads samples over dot columns by their day. Samples sharing one day,
// or all malformed, fall back to even spacing by index.
func dotColumns(samples []XY, dots int) []int {
	out := make([]int, len(samples))
	if len(samples) == 1 {
		return out
	}
	minX, maxX := samples[0].X, samples[0].X
	for _, s := range samples {
		if s.X < minX {
			minX = s.X
		}
		if s.X > maxX {
			maxX = s.X
		}
	}
	for i, s := range samples {
		var pos float64
		if maxX == minX {
			pos = float64(i) / float64(len(samples)-1)
		} else {
			pos = float64(s.X-minX) / float64(maxX-minX)
		}
		out[i] = int(math.Round(pos * float64(dots-1)))
	}
	return out
}

func dayAxis(samples []XY, width int) string {
	first := strconv.Itoa(samples[0].X)
	if len(samples) == 1 {
		return first
	}
	last := strconv.Itoa(samples[len(samples)-1].X)
	gap := width - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	return first + strings.Repeat(" ", gap) + last
}

func valueRange(samples []XY) (float64, float64) {
	return minOf(samples), maxOf(samples)
}

func minOf(samples []XY) float64 {
	v := math.Inf(1)
	for _, s := range samples {
		if s.Y < v {
			v = s.Y
		}
	}
	if math.IsInf(v, 1) {
		return 0
	}
	return v
}

func maxOf(samples []XY) float64 {
	v := math.Inf(-1)
	for _, s := range samples {
		if s.Y > v {
			v = s.Y
		}
	}
	if math.IsInf(v, -1) {
		return 0
	}
	return v
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

// brailleDotMask maps a dot inside a 2x4 cell to its Unicode bit.
func brailleDotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
