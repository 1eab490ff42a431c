package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// column describes one history table column. Numeric columns (turn and record
// counts) set alignRight so the digits line up.
type column struct {
	title      string
	alignRight bool
}

// formatTable lays rows out under cols, sizing each column by terminal display
// width so CJK prompts and session ids stay aligned. Missing cells print empty.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := range cols {
			if w := runewidth.StringWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		cell := cellAt(row, i)
		pad := strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
		if col.alignRight {
			cells[i] = pad + cell
		} else {
			cells[i] = cell + pad
		}
	}
	return strings.TrimRight(strings.Join(cells, columnGap), " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
