package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/agromind/internal/model"
)

func (m *Model) updateQuestion(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.goToMain()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) refreshChat() {
	if m.width <= 0 {
		return
	}
	atBottom := m.chatView.AtBottom()
	m.chatView.SetContent(m.renderTurns(m.width))
	if atBottom {
		m.chatView.GotoBottom()
	}
}

func (m *Model) renderTurns(width int) string {
	turns := m.sess.Turns()
	awaiting := m.sess.ChatState() == model.ChatAwaiting
	if len(turns) == 0 && !awaiting {
		return headerStyle.Render(m.labels.EmptyChat)
	}
	blocks := make([]string, 0, len(turns)+1)
	for _, turn := range turns {
		blocks = append(blocks, m.renderTurn(turn, width))
	}
	if awaiting {
		pending := m.turnHeader(model.RoleAssistant) + "\n" + m.spinner.View() + " " + headerStyle.Render(m.labels.Thinking)
		blocks = append(blocks, pending)
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderTurn(turn model.ChatTurn, width int) string {
	header := m.turnHeader(turn.Role)
	if turn.Role == model.RoleAssistant {
		return header + "\n" + m.markdown(turn.Content, width)
	}
	return header + "\n" + wrapText(turn.Content, width)
}

func (m *Model) turnHeader(role model.Role) string {
	if role == model.RoleAssistant {
		return m.cfg.AssistantAvatar + " " + assistantNameStyle.Render(m.labels.Assistant)
	}
	return m.cfg.UserAvatar + " " + userNameStyle.Render(m.labels.You)
}

func (m *Model) renderQuestion(height int) string {
	var notice string
	switch {
	case m.sess.ChatNotice() != "":
		notice = errorStyle.Render(truncateLine(m.labels.ChatFailed+": "+m.sess.ChatNotice(), m.width))
	case m.busyNote:
		notice = headerStyle.Render(m.labels.Busy)
	}
	lines := []string{m.chatView.View(), notice, m.chatInput.View()}
	return fitLines(strings.Join(lines, "\n"), m.width, height)
}
