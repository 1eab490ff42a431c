package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/agromind/internal/chart"
	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/remote"
	"github.com/verte-zerg/agromind/internal/session"
)

var fixedNow = time.Date(2024, time.January, 10, 15, 0, 0, 0, time.Local)

type fakeFetcher struct {
	calls []model.DateRange
	fn    func(model.DateRange) ([]model.ListRecord, error)
}

func (f *fakeFetcher) Fetch(_ context.Context, r model.DateRange) ([]model.ListRecord, error) {
	f.calls = append(f.calls, r)
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(r)
}

type fakeAsker struct {
	prompts []string
	answer  string
	err     error
}

func (f *fakeAsker) Ask(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func plainRecord() model.ListRecord {
	return model.ListRecord{
		Range:   "2024-01-10~01-10",
		Title:   "Irrigation advice",
		Content: "Soil moisture is adequate.",
	}
}

func seriesRecord() model.ListRecord {
	rec := plainRecord()
	rec.Data = &model.RecordData{
		Irrigation: []model.Point{
			{Time: "2024-01-01", Value: 10},
			{Time: "2024-01-02", Value: 20},
			{Time: "2024-01-03", Value: 35},
		},
		Temperature: []model.Point{
			{Time: "2024-01-01 08:00", Value: 12},
			{Time: "2024-01-02 08:00", Value: 14},
			{Time: "2024-01-03 08:00", Value: 9},
		},
	}
	return rec
}

func newTestModel(t *testing.T, fetcher *fakeFetcher, asker *fakeAsker, log *zap.Logger) *Model {
	t.Helper()
	sess := session.New(session.Options{ID: "test", Now: func() time.Time { return fixedNow }})
	m := NewModel(Options{
		Session: sess,
		Records: fetcher,
		Chat:    asker,
		Config:  model.Config{Language: "en", UserAvatar: "U", AssistantAvatar: "A"},
		Logger:  log,
	})
	m.markdown = func(text string, _ int) string { return text }
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// drain runs cmd and feeds the resulting messages back, skipping animation ticks.
func drain(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			m.Update(msg)
		}
	}
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

// openQuestion loads one card and activates its action.
func openQuestion(t *testing.T, m *Model) {
	t.Helper()
	drain(m, m.Init())
	require.Len(t, m.cards, 1)
	press(m, tea.KeyEnter)
	require.Equal(t, model.ScreenQuestion, m.Session().Screen())
}

func TestInitFetchesTodayAndRendersCard(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)

	drain(m, m.Init())

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, "2024-01-10", fetcher.calls[0].Start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-10", fetcher.calls[0].End.Format("2006-01-02"))
	require.Len(t, m.cards, 1)
	assert.Empty(t, m.cards[0].charts)

	view := m.View()
	assert.Contains(t, view, "Irrigation advice")
	assert.Contains(t, view, "Soil moisture is adequate.")
	assert.Contains(t, view, "Ask Agromind")
}

func TestCardWithSeriesBuildsBarAndLine(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{seriesRecord()}, nil
	}}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)
	drain(m, m.Init())

	require.Len(t, m.cards, 1)
	charts := m.cards[0].charts
	require.Len(t, charts, 2)
	assert.Equal(t, chart.KindBar, charts[0].Kind())
	assert.Equal(t, 3, charts[0].Len())
	assert.Equal(t, chart.KindLine, charts[1].Kind())
	assert.Equal(t, 3, charts[1].Len())
	assert.Contains(t, m.View(), "Irrigation (max 35)")
}

func TestPageKeysMoveSelectionWithView(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		records := make([]model.ListRecord, 10)
		for i := range records {
			records[i] = seriesRecord()
		}
		return records, nil
	}}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)
	drain(m, m.Init())
	require.Len(t, m.cards, 10)
	require.Equal(t, 0, m.selected)

	press(m, tea.KeyPgDown)
	assert.Greater(t, m.selected, 0)
	assert.Greater(t, m.cardsView.YOffset, 0)

	for i := 0; i < 20; i++ {
		press(m, tea.KeyPgDown)
	}
	assert.Equal(t, 9, m.selected)
	assert.True(t, m.cardsView.AtBottom())

	for i := 0; i < 20; i++ {
		press(m, tea.KeyPgUp)
	}
	assert.Equal(t, 0, m.selected)
	assert.Equal(t, 0, m.cardsView.YOffset)
	assert.Contains(t, m.View(), "pgdn")
}

func TestListFailureShowsNoticeAndNoCards(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return nil, &remote.HTTPStatusError{URL: "http://x/list", StatusCode: 500, Status: "500 Internal Server Error"}
	}}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)
	drain(m, m.Init())

	assert.Empty(t, m.cards)
	assert.NotEmpty(t, m.Session().ListNotice())
	assert.Contains(t, m.View(), "Could not load records")
}

func TestAskWithoutCardsStaysOnMain(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{}, &fakeAsker{}, nil)
	drain(m, m.Init())

	press(m, tea.KeyEnter)
	assert.Equal(t, model.ScreenMain, m.Session().Screen())
	assert.Contains(t, m.View(), "No records for this range.")
}

func TestApplyRangeRejectsInvertedDates(t *testing.T) {
	fetcher := &fakeFetcher{}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)
	drain(m, m.Init())

	press(m, tea.KeyTab)
	require.Equal(t, focusStart, m.focus)
	m.dateInputs[0].SetValue("2024-01-09")
	m.dateInputs[1].SetValue("2024-01-05")
	cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Len(t, fetcher.calls, 1)
	assert.NotEmpty(t, m.rangeErr)
	assert.Equal(t, "2024-01-10", m.Session().Range().Start.Format("2006-01-02"))
}

func TestApplyRangeRejectsMalformedDate(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{}, &fakeAsker{}, nil)
	press(m, tea.KeyTab)
	m.dateInputs[0].SetValue("2024/01/01")

	assert.Nil(t, press(m, tea.KeyEnter))
	assert.Equal(t, "Dates must be YYYY-MM-DD", m.rangeErr)
}

func TestApplyRangeDropsStaleResult(t *testing.T) {
	fetcher := &fakeFetcher{fn: func(r model.DateRange) ([]model.ListRecord, error) {
		rec := plainRecord()
		rec.Title = r.Start.Format("2006-01-02")
		return []model.ListRecord{rec}, nil
	}}
	m := newTestModel(t, fetcher, &fakeAsker{}, nil)
	initial := m.Init()

	press(m, tea.KeyTab)
	m.dateInputs[0].SetValue("2024-01-01")
	m.dateInputs[1].SetValue("2024-01-07")
	refetch := press(m, tea.KeyEnter)
	require.NotNil(t, refetch)
	assert.Equal(t, focusCards, m.focus)

	drain(m, refetch)
	drain(m, initial)

	require.Len(t, m.cards, 1)
	assert.Equal(t, "2024-01-01", m.cards[0].record.Title)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	asker := &fakeAsker{answer: "x"}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, nil)
	openQuestion(t, m)

	m.chatInput.SetValue("   ")
	assert.Nil(t, press(m, tea.KeyEnter))
	assert.Empty(t, m.Session().Turns())
	assert.Empty(t, asker.prompts)
}

func TestSubmitAppendsAnswer(t *testing.T) {
	asker := &fakeAsker{answer: "Moderate, 30-40mm recommended."}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, nil)
	openQuestion(t, m)

	m.chatInput.SetValue("How much water this week?")
	cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, model.ChatAwaiting, m.Session().ChatState())
	assert.Equal(t, "", m.chatInput.Value())
	assert.Contains(t, m.View(), "thinking…")

	drain(m, cmd)

	want := []model.ChatTurn{
		{Role: model.RoleUser, Content: "How much water this week?"},
		{Role: model.RoleAssistant, Content: "Moderate, 30-40mm recommended."},
	}
	assert.Equal(t, want, m.Session().Turns())
	assert.Equal(t, []string{"How much water this week?"}, asker.prompts)
	assert.Equal(t, model.ChatIdle, m.Session().ChatState())
	assert.NotContains(t, m.View(), "thinking…")
}

func TestSubmitFailureKeepsUserTurn(t *testing.T) {
	asker := &fakeAsker{err: &remote.NetworkError{Op: "POST", URL: "http://x/agent/chat", Err: errors.New("connection refused")}}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, nil)
	openQuestion(t, m)

	m.chatInput.SetValue("Hello")
	drain(m, press(m, tea.KeyEnter))

	assert.Equal(t, []model.ChatTurn{{Role: model.RoleUser, Content: "Hello"}}, m.Session().Turns())
	assert.Equal(t, model.ChatIdle, m.Session().ChatState())
	assert.True(t, strings.Contains(m.Session().ChatNotice(), "connection refused"))
	assert.Contains(t, m.View(), "Request failed")
}

func TestSubmitWhileAwaitingIsRejected(t *testing.T) {
	asker := &fakeAsker{answer: "ok"}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, nil)
	openQuestion(t, m)

	m.chatInput.SetValue("first")
	pending := press(m, tea.KeyEnter)
	require.NotNil(t, pending)

	m.chatInput.SetValue("second")
	assert.Nil(t, press(m, tea.KeyEnter))
	assert.Len(t, m.Session().Turns(), 1)
	assert.Equal(t, "second", m.chatInput.Value())
	assert.Contains(t, m.View(), "Waiting for the previous answer")

	drain(m, pending)
	assert.Len(t, m.Session().Turns(), 2)
}

func TestLeavingAndReturningKeepsLog(t *testing.T) {
	asker := &fakeAsker{answer: "yes"}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, nil)
	openQuestion(t, m)
	m.chatInput.SetValue("Is it dry?")
	drain(m, press(m, tea.KeyEnter))

	press(m, tea.KeyEsc)
	assert.Equal(t, model.ScreenMain, m.Session().Screen())
	press(m, tea.KeyEnter)
	assert.Equal(t, model.ScreenQuestion, m.Session().Screen())
	assert.Len(t, m.Session().Turns(), 2)
	assert.Contains(t, m.View(), "Is it dry?")
}

func TestLateReplyAfterLeavingIsIgnored(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	asker := &fakeAsker{answer: "too late"}
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, asker, zap.New(core))
	openQuestion(t, m)

	m.chatInput.SetValue("Anyone there?")
	pending := press(m, tea.KeyEnter)
	press(m, tea.KeyEsc)
	require.Equal(t, model.ChatIdle, m.Session().ChatState())

	drain(m, pending)

	assert.Equal(t, []model.ChatTurn{{Role: model.RoleUser, Content: "Anyone there?"}}, m.Session().Turns())
	assert.Equal(t, model.ScreenMain, m.Session().Screen())
	assert.Equal(t, 1, logs.FilterMessage("late chat reply dropped").Len())
}

func TestFooterFollowsScreen(t *testing.T) {
	m := newTestModel(t, &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
		return []model.ListRecord{plainRecord()}, nil
	}}, &fakeAsker{}, nil)
	drain(m, m.Init())
	assert.Contains(t, m.renderFooter(), "Ask Agromind")

	press(m, tea.KeyEnter)
	footer := m.renderFooter()
	assert.Contains(t, footer, "send")
	assert.Contains(t, footer, "Back")
}

func TestChineseLabels(t *testing.T) {
	sess := session.New(session.Options{Now: func() time.Time { return fixedNow }})
	m := NewModel(Options{
		Session: sess,
		Records: &fakeFetcher{fn: func(model.DateRange) ([]model.ListRecord, error) {
			return []model.ListRecord{plainRecord()}, nil
		}},
		Config: model.Config{Language: "zh"},
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(m, m.Init())

	assert.Contains(t, m.View(), "向Agromind提问")
	assert.Equal(t, "请输入您的问题", m.chatInput.Placeholder)
}
