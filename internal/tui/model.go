// Package tui provides the Bubble Tea dashboard: a record list and a question screen.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/session"
)

// RecordFetcher loads the records for a date range.
type RecordFetcher interface {
	Fetch(ctx context.Context, r model.DateRange) ([]model.ListRecord, error)
}

// Asker sends one prompt and returns the display text of the answer.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Options wires the model to its collaborators.
type Options struct {
	Session *session.Session
	Records RecordFetcher
	Chat    Asker
	Config  model.Config
	Logger  *zap.Logger
}

type listResultMsg struct {
	seq     int
	records []model.ListRecord
	err     error
}

type chatResultMsg struct {
	id     int
	answer string
	err    error
}

const (
	focusStart = iota
	focusEnd
	focusCards
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	sess    *session.Session
	records RecordFetcher
	chat    Asker
	cfg     model.Config
	log     *zap.Logger
	jobs    *jobBus

	labels labels
	keys   keyMap
	help   help.Model

	width  int
	height int

	// main screen
	dateInputs  []textinput.Model
	focus       int
	rangeErr    string
	listLoading bool
	cards       []cardView
	selected    int
	cardOffsets []int
	cardsView   viewport.Model

	// question screen
	chatInput textinput.Model
	chatView  viewport.Model
	spinner   spinner.Model
	markdown  func(text string, width int) string
	busyNote  bool
}

// NewModel constructs the dashboard model.
func NewModel(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(session.Options{Earliest: opts.Config.EarliestDate})
	}
	l := labelsFor(opts.Config.Language)
	md := &markdownRenderer{}
	m := &Model{
		sess:     sess,
		records:  opts.Records,
		chat:     opts.Chat,
		cfg:      opts.Config,
		log:      log,
		jobs:     newJobBus(log),
		labels:   l,
		keys:     newKeyMap(l),
		help:     help.New(),
		focus:    focusCards,
		markdown: md.Render,
	}
	m.initInputs()
	m.cardsView = viewport.New(0, 0)
	m.chatView = viewport.New(0, 0)
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	return m
}

// Init implements tea.Model. It loads the records for the initial range.
func (m *Model) Init() tea.Cmd {
	return m.fetchRecords(m.sess.Refetch())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case listResultMsg:
		m.handleListResult(msg)
		return m, nil
	case chatResultMsg:
		m.handleChatResult(msg)
		return m, nil
	case spinner.TickMsg:
		if m.sess.ChatState() != model.ChatAwaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshChat()
		return m, cmd
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.sess.Screen() == model.ScreenQuestion {
			return m.updateQuestion(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	var body string
	if m.sess.Screen() == model.ScreenQuestion {
		body = m.renderQuestion(bodyHeight)
	} else {
		body = m.renderMain(bodyHeight)
	}
	body = fitLines(body, m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Session exposes the state container the model drives.
func (m *Model) Session() *session.Session {
	return m.sess
}

func (m *Model) goToQuestion() tea.Cmd {
	m.sess.GoToQuestion()
	m.busyNote = false
	m.refreshChat()
	m.chatView.GotoBottom()
	return m.chatInput.Focus()
}

func (m *Model) goToMain() {
	if m.sess.ChatState() == model.ChatAwaiting {
		m.log.Info("question screen left while awaiting a reply", zap.String("session", m.sess.ID()))
	}
	m.sess.GoToMain()
	m.chatInput.Blur()
	m.busyNote = false
}

func (m *Model) fetchRecords(seq int) tea.Cmd {
	if m.records == nil {
		return nil
	}
	m.listLoading = true
	r := m.sess.Range()
	fetcher := m.records
	return m.jobs.Start(jobKindList, func(ctx context.Context) (tea.Msg, error) {
		records, err := fetcher.Fetch(ctx, r)
		return listResultMsg{seq: seq, records: records, err: err}, err
	})
}

func (m *Model) handleListResult(msg listResultMsg) {
	var applied bool
	if msg.err != nil {
		applied = m.sess.FailRecords(msg.seq, msg.err)
	} else {
		applied = m.sess.ApplyRecords(msg.seq, msg.records)
	}
	if !applied {
		m.log.Debug("stale list result dropped", zap.Int("seq", msg.seq))
		return
	}
	m.listLoading = false
	m.rebuildCards()
}

func (m *Model) submit() tea.Cmd {
	req, ok := m.sess.Submit(m.chatInput.Value())
	if !ok {
		m.busyNote = m.sess.ChatState() == model.ChatAwaiting
		return nil
	}
	m.busyNote = false
	m.chatInput.Reset()
	m.refreshChat()
	m.chatView.GotoBottom()
	if m.chat == nil {
		m.sess.Fail(req.ID, nil)
		m.refreshChat()
		return nil
	}
	asker := m.chat
	job := m.jobs.Start(jobKindChat, func(ctx context.Context) (tea.Msg, error) {
		answer, err := asker.Ask(ctx, req.Prompt)
		return chatResultMsg{id: req.ID, answer: answer, err: err}, err
	})
	return tea.Batch(m.spinner.Tick, job)
}

func (m *Model) handleChatResult(msg chatResultMsg) {
	var applied bool
	if msg.err != nil {
		applied = m.sess.Fail(msg.id, msg.err)
	} else {
		applied = m.sess.Resolve(msg.id, msg.answer)
	}
	if !applied {
		m.log.Info("late chat reply dropped", zap.Int("request", msg.id))
		return
	}
	m.busyNote = false
	m.refreshChat()
	m.chatView.GotoBottom()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.cardsView.Width = m.width
	m.cardsView.Height = maxInt(1, bodyHeight-mainControlsHeight)
	m.chatView.Width = m.width
	m.chatView.Height = maxInt(1, bodyHeight-chatControlsHeight)
	for i := range m.dateInputs {
		m.dateInputs[i].Width = dateInputWidth
	}
	m.chatInput.Width = maxInt(10, m.width-lipgloss.Width(m.chatInput.Prompt)-2)
	m.help.Width = m.width
	m.rebuildCards()
	m.refreshChat()
}

func (m *Model) renderTabs() string {
	tabs := []string{m.labels.MainTab, m.labels.QuestionTab}
	active := int(m.sess.Screen())
	parts := make([]string, 0, len(tabs)+1)
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := m.renderTabs()
	title := headerStyle.Render(" " + m.labels.AppName)
	return padLines(lipgloss.JoinHorizontal(lipgloss.Center, tabs, title), m.width)
}

func (m *Model) renderFooter() string {
	var bindings []key.Binding
	switch {
	case m.sess.Screen() == model.ScreenQuestion:
		bindings = m.keys.chatHelp()
	case m.focus == focusCards:
		bindings = m.keys.mainCardsHelp()
	default:
		bindings = m.keys.mainDateHelp()
	}
	return m.help.ShortHelpView(bindings)
}
