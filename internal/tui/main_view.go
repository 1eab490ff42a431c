package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/agromind/internal/chart"
	"github.com/verte-zerg/agromind/internal/config"
	"github.com/verte-zerg/agromind/internal/model"
)

const (
	mainControlsHeight = 2
	chatControlsHeight = 2
	dateInputWidth     = 10
	chartHeight        = 4
	chartGap           = 2
)

// cardView is one record prepared for display.
type cardView struct {
	record model.ListRecord
	charts []chart.Chart
}

func buildCardViews(records []model.ListRecord) []cardView {
	cards := make([]cardView, 0, len(records))
	for _, rec := range records {
		cards = append(cards, cardView{record: rec, charts: chart.ForRecord(rec)})
	}
	return cards
}

func (m *Model) initInputs() {
	m.dateInputs = []textinput.Model{
		newDateInput(m.labels.From),
		newDateInput(m.labels.To),
	}
	m.syncDateInputs()

	m.chatInput = textinput.New()
	m.chatInput.Prompt = "> "
	m.chatInput.Placeholder = m.labels.Placeholder
	m.chatInput.CharLimit = 0
	m.chatInput.Cursor.SetMode(cursor.CursorBlink)
}

func newDateInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "YYYY-MM-DD"
	input.CharLimit = len(config.DateLayout)
	input.Width = dateInputWidth
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) syncDateInputs() {
	r := m.sess.Range()
	m.dateInputs[0].SetValue(r.Start.Format(config.DateLayout))
	m.dateInputs[1].SetValue(r.End.Format(config.DateLayout))
}

func (m *Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus != focusCards {
		switch msg.Type {
		case tea.KeyTab:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyEsc:
			m.rangeErr = ""
			m.syncDateInputs()
			return m, m.setFocus(focusCards)
		case tea.KeyEnter:
			return m, m.applyRange()
		}
		var cmd tea.Cmd
		m.dateInputs[m.focus], cmd = m.dateInputs[m.focus].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextField):
		return m, m.setFocus(focusStart)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.setFocus(focusEnd)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.pageCards(false)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.pageCards(true)
		return m, nil
	case key.Matches(msg, m.keys.Ask):
		if len(m.cards) == 0 {
			return m, nil
		}
		return m, m.goToQuestion()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchRecords(m.sess.Refetch())
	}
	var cmd tea.Cmd
	m.cardsView, cmd = m.cardsView.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(idx int) tea.Cmd {
	const count = focusCards + 1
	idx = ((idx % count) + count) % count
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.dateInputs {
		if i == idx {
			cmd = m.dateInputs[i].Focus()
		} else {
			m.dateInputs[i].Blur()
		}
	}
	return cmd
}

// applyRange validates the typed dates and starts a fetch for them.
func (m *Model) applyRange() tea.Cmd {
	start, err := config.ParseDate(strings.TrimSpace(m.dateInputs[0].Value()))
	if err != nil {
		m.rangeErr = m.labels.InvalidDate
		return nil
	}
	end, err := config.ParseDate(strings.TrimSpace(m.dateInputs[1].Value()))
	if err != nil {
		m.rangeErr = m.labels.InvalidDate
		return nil
	}
	seq, err := m.sess.SetRange(model.DateRange{Start: start, End: end})
	if err != nil {
		m.rangeErr = err.Error()
		return nil
	}
	m.rangeErr = ""
	m.syncDateInputs()
	m.setFocus(focusCards)
	return m.fetchRecords(seq)
}

func (m *Model) moveSelection(delta int) {
	if len(m.cards) == 0 {
		return
	}
	next := m.selected + delta
	if next < 0 {
		next = 0
	}
	if next >= len(m.cards) {
		next = len(m.cards) - 1
	}
	if next == m.selected {
		return
	}
	m.selected = next
	m.renderCards()
	m.ensureSelectedVisible()
}

// pageCards scrolls the cards by one page and selects the card at the top of the view,
// or the last card once the bottom is reached.
func (m *Model) pageCards(down bool) {
	if len(m.cards) == 0 {
		return
	}
	if down {
		m.cardsView.PageDown()
	} else {
		m.cardsView.PageUp()
	}
	target := 0
	for i, off := range m.cardOffsets {
		if off <= m.cardsView.YOffset {
			target = i
		}
	}
	if down && m.cardsView.AtBottom() {
		target = len(m.cards) - 1
	}
	if target == m.selected {
		return
	}
	m.selected = target
	m.renderCards()
}

func (m *Model) rebuildCards() {
	m.cards = buildCardViews(m.sess.Records())
	if m.selected >= len(m.cards) {
		m.selected = maxInt(0, len(m.cards)-1)
	}
	m.renderCards()
	m.ensureSelectedVisible()
}

func (m *Model) renderCards() {
	if m.width <= 0 {
		return
	}
	if len(m.cards) == 0 {
		m.cardOffsets = nil
		switch {
		case m.listLoading:
			m.cardsView.SetContent(headerStyle.Render(m.labels.Loading))
		case m.sess.ListNotice() != "":
			m.cardsView.SetContent("")
		default:
			m.cardsView.SetContent(headerStyle.Render(m.labels.NoRecords))
		}
		return
	}
	blocks := make([]string, 0, len(m.cards))
	offsets := make([]int, 0, len(m.cards))
	line := 0
	for i, card := range m.cards {
		rendered := renderCard(card, m.width, i == m.selected, m.labels)
		offsets = append(offsets, line)
		line += lipgloss.Height(rendered)
		blocks = append(blocks, rendered)
	}
	m.cardOffsets = offsets
	m.cardsView.SetContent(strings.Join(blocks, "\n"))
}

func (m *Model) ensureSelectedVisible() {
	if m.selected >= len(m.cardOffsets) {
		return
	}
	top := m.cardOffsets[m.selected]
	bottom := m.cardsView.TotalLineCount()
	if m.selected+1 < len(m.cardOffsets) {
		bottom = m.cardOffsets[m.selected+1]
	}
	switch {
	case top < m.cardsView.YOffset:
		m.cardsView.SetYOffset(top)
	case bottom > m.cardsView.YOffset+m.cardsView.Height:
		if bottom-top > m.cardsView.Height {
			m.cardsView.SetYOffset(top)
		} else {
			m.cardsView.SetYOffset(bottom - m.cardsView.Height)
		}
	}
}

func renderCard(card cardView, width int, selected bool, l labels) string {
	style := cardStyle
	action := actionStyle
	if selected {
		style = selectedCardStyle
		action = activeActionStyle
	}
	outer := maxInt(20, width-style.GetHorizontalBorderSize())
	inner := maxInt(10, outer-style.GetHorizontalPadding())
	parts := []string{
		cardRangeStyle.Render(card.record.Range),
		cardTitleStyle.Render(wrapText(card.record.Title, inner)),
		wrapText(card.record.Content, inner),
	}
	if len(card.charts) > 0 {
		parts = append(parts, "", renderCharts(card.charts, inner))
	}
	parts = append(parts, action.Render(l.Ask))
	return style.Width(outer).Render(strings.Join(parts, "\n"))
}

// renderCharts lays charts out side by side, stacking them when the card is too narrow.
func renderCharts(charts []chart.Chart, width int) string {
	n := len(charts)
	w := chart.SideBySideWidth(width, n, chartGap)
	blocks := make([]string, 0, n)
	for _, c := range charts {
		blocks = append(blocks, chartStyle(c.Kind()).Render(c.Render(w, chartHeight)))
	}
	if w*n+chartGap*(n-1) > width {
		return strings.Join(blocks, "\n")
	}
	spaced := make([]string, 0, 2*n-1)
	for i, block := range blocks {
		if i > 0 {
			spaced = append(spaced, strings.Repeat(" ", chartGap))
		}
		spaced = append(spaced, block)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}

func chartStyle(kind chart.Kind) lipgloss.Style {
	if kind == chart.KindBar {
		return chartBarStyle
	}
	return chartLineStyle
}

func (m *Model) renderMain(height int) string {
	controls := m.dateInputs[0].View() + "  " + m.dateInputs[1].View()
	var status string
	switch {
	case m.rangeErr != "":
		status = errorStyle.Render(truncateLine(m.rangeErr, m.width))
	case m.sess.ListNotice() != "":
		status = errorStyle.Render(truncateLine(m.labels.ListFailed+": "+m.sess.ListNotice(), m.width))
	case m.listLoading:
		status = headerStyle.Render(m.labels.Loading)
	}
	lines := []string{controls, status, m.cardsView.View()}
	return fitLines(strings.Join(lines, "\n"), m.width, height)
}
