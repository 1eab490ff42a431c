// Package model defines shared data structures.
package model

import "time"

// ScreenState selects the top-level screen.
type ScreenState int

const (
	// ScreenMain shows the date range and the record cards.
	ScreenMain ScreenState = iota
	// ScreenQuestion shows the assistant chat.
	ScreenQuestion
)

func (s ScreenState) String() string {
	switch s {
	case ScreenMain:
		return "main"
	case ScreenQuestion:
		return "question"
	default:
		return "unknown"
	}
}

// Role tags the speaker of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in the chat log.
type ChatTurn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatState tracks the pending exchange of the chat view.
type ChatState int

const (
	ChatIdle ChatState = iota
	ChatAwaiting
)

// Point is one sample of a record time series.
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// RecordData holds the optional series attached to a record.
type RecordData struct {
	Irrigation  []Point `json:"irrigation,omitempty"`
	Temperature []Point `json:"temperature,omitempty"`
}

// ListRecord is one agronomic summary returned by the list API.
type ListRecord struct {
	Range   string      `json:"range"`
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Data    *RecordData `json:"data,omitempty"`
}

// DateRange is an inclusive pair of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Config defines resolved runtime settings.
type Config struct {
	ListBaseURL     string
	ListTimeout     time.Duration
	ChatBaseURL     string
	ChatDecoder     string
	ChatTimeout     time.Duration
	EarliestDate    time.Time
	Language        string
	UserAvatar      string
	AssistantAvatar string
	HistoryEnabled  bool
	Debug           bool
}

// SessionSummary describes a stored chat session.
type SessionSummary struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Turns     int       `json:"turns" yaml:"turns"`
}

// FetchLog records the outcome of one list fetch.
type FetchLog struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	Start     string    `json:"start" yaml:"start"`
	End       string    `json:"end" yaml:"end"`
	Records   int       `json:"records" yaml:"records"`
	Err       string    `json:"error,omitempty" yaml:"error,omitempty"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
