// Package session owns the state of one dashboard run: active screen, chat log and list results.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/agromind/internal/model"
)

// DefaultEarliestDate is the lower bound of the date picker.
var DefaultEarliestDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.Local)

var (
	ErrRangeInverted    = errors.New("start date is after end date")
	ErrRangeOutOfBounds = errors.New("date outside the allowed range")
)

// EventKind identifies a session mutation.
type EventKind int

const (
	EventScreenChanged EventKind = iota
	EventTurnAppended
	EventRecordsReplaced
)

// Event describes one mutation. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Screen  model.ScreenState
	Turn    model.ChatTurn
	Index   int
	Range   model.DateRange
	Records int
	Err     error
}

// Observer is notified after every mutation.
type Observer func(Event)

// Options configures New.
type Options struct {
	ID       string
	Earliest time.Time
	Now      func() time.Time
}

// ChatRequest is a submitted prompt awaiting its reply.
type ChatRequest struct {
	ID     int
	Prompt string
}

// Session is the explicit state container shared by the screen controller and both views.
// It is not safe for concurrent use; the TUI mutates it from its Update loop only.
type Session struct {
	id        string
	now       func() time.Time
	earliest  time.Time
	observers []Observer

	screen model.ScreenState

	turns      []model.ChatTurn
	chatState  model.ChatState
	pendingID  int
	nextChatID int
	chatNotice string

	dateRange  model.DateRange
	records    []model.ListRecord
	listNotice string
	listSeq    int
}

// New creates a session on the Main screen with an empty chat log and a today..today range.
func New(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	earliest := opts.Earliest
	if earliest.IsZero() {
		earliest = DefaultEarliestDate
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	today := Day(now())
	return &Session{
		id:        id,
		now:       now,
		earliest:  Day(earliest),
		dateRange: model.DateRange{Start: today, End: today},
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Observe registers fn for all later mutations.
func (s *Session) Observe(fn Observer) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

func (s *Session) emit(ev Event) {
	for _, fn := range s.observers {
		fn(ev)
	}
}

// Screen returns the active screen.
func (s *Session) Screen() model.ScreenState {
	return s.screen
}

// GoToQuestion shows the chat screen.
func (s *Session) GoToQuestion() {
	s.setScreen(model.ScreenQuestion)
}

// GoToMain shows the list screen. The chat log is kept; a pending exchange is abandoned
// and its reply will be ignored.
func (s *Session) GoToMain() {
	if s.chatState == model.ChatAwaiting {
		s.chatState = model.ChatIdle
		s.pendingID = 0
	}
	s.setScreen(model.ScreenMain)
}

func (s *Session) setScreen(screen model.ScreenState) {
	s.screen = screen
	s.emit(Event{Kind: EventScreenChanged, Screen: screen})
}

// Turns returns a copy of the chat log.
func (s *Session) Turns() []model.ChatTurn {
	out := make([]model.ChatTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// ChatState reports whether a reply is pending.
func (s *Session) ChatState() model.ChatState {
	return s.chatState
}

// ChatNotice is the last chat failure, cleared by the next submit.
func (s *Session) ChatNotice() string {
	return s.chatNotice
}

// Submit appends the user turn and starts an exchange. It returns false, leaving the log
// untouched, for blank text or while another reply is pending.
func (s *Session) Submit(text string) (ChatRequest, bool) {
	if strings.TrimSpace(text) == "" {
		return ChatRequest{}, false
	}
	if s.chatState == model.ChatAwaiting {
		return ChatRequest{}, false
	}
	s.chatNotice = ""
	s.appendTurn(model.ChatTurn{Role: model.RoleUser, Content: text})
	s.nextChatID++
	s.pendingID = s.nextChatID
	s.chatState = model.ChatAwaiting
	return ChatRequest{ID: s.pendingID, Prompt: text}, true
}

// Resolve appends the assistant turn for request id. Stale ids are ignored.
func (s *Session) Resolve(id int, content string) bool {
	if !s.isPending(id) {
		return false
	}
	s.chatState = model.ChatIdle
	s.pendingID = 0
	s.appendTurn(model.ChatTurn{Role: model.RoleAssistant, Content: content})
	return true
}

// Fail ends request id without an assistant turn and records a notice. Stale ids are ignored.
func (s *Session) Fail(id int, err error) bool {
	if !s.isPending(id) {
		return false
	}
	s.chatState = model.ChatIdle
	s.pendingID = 0
	if err != nil {
		s.chatNotice = err.Error()
	} else {
		s.chatNotice = "request failed"
	}
	return true
}

func (s *Session) isPending(id int) bool {
	return s.chatState == model.ChatAwaiting && id != 0 && id == s.pendingID
}

func (s *Session) appendTurn(turn model.ChatTurn) {
	s.turns = append(s.turns, turn)
	s.emit(Event{Kind: EventTurnAppended, Turn: turn, Index: len(s.turns) - 1})
}

// Range returns the active date range.
func (s *Session) Range() model.DateRange {
	return s.dateRange
}

// Bounds returns the earliest and latest selectable days.
func (s *Session) Bounds() (time.Time, time.Time) {
	return s.earliest, Day(s.now())
}

// SetRange validates r and makes it active. The returned sequence number tags the fetch
// that the caller must issue next.
func (s *Session) SetRange(r model.DateRange) (int, error) {
	earliest, latest := s.Bounds()
	r = model.DateRange{Start: Day(r.Start), End: Day(r.End)}
	if err := ValidateRange(r, earliest, latest); err != nil {
		return 0, err
	}
	s.dateRange = r
	s.listSeq++
	return s.listSeq, nil
}

// Refetch returns a new sequence number for the current range.
func (s *Session) Refetch() int {
	s.listSeq++
	return s.listSeq
}

// ApplyRecords replaces the record list with the result of fetch seq.
func (s *Session) ApplyRecords(seq int, records []model.ListRecord) bool {
	if seq != s.listSeq {
		return false
	}
	s.records = records
	s.listNotice = ""
	s.emit(Event{Kind: EventRecordsReplaced, Range: s.dateRange, Records: len(records)})
	return true
}

// FailRecords empties the record list and records a notice for fetch seq.
func (s *Session) FailRecords(seq int, err error) bool {
	if seq != s.listSeq {
		return false
	}
	s.records = nil
	if err != nil {
		s.listNotice = err.Error()
	} else {
		s.listNotice = "fetch failed"
	}
	s.emit(Event{Kind: EventRecordsReplaced, Range: s.dateRange, Err: err})
	return true
}

// Records returns a copy of the current records in fetch order.
func (s *Session) Records() []model.ListRecord {
	if s.records == nil {
		return nil
	}
	out := make([]model.ListRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ListNotice is the last list failure.
func (s *Session) ListNotice() string {
	return s.listNotice
}

// ValidateRange checks start <= end and both inside [earliest, latest].
func ValidateRange(r model.DateRange, earliest, latest time.Time) error {
	if r.Start.After(r.End) {
		return ErrRangeInverted
	}
	if r.Start.Before(earliest) || r.End.After(latest) {
		return fmt.Errorf("%w: %s..%s", ErrRangeOutOfBounds, earliest.Format("2006-01-02"), latest.Format("2006-01-02"))
	}
	return nil
}

// Day truncates t to local midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
