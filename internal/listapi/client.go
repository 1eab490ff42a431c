// Package listapi fetches agronomic summary records for a date range.
package listapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/agromind/internal/model"
	"github.com/verte-zerg/agromind/internal/remote"
)

// DateLayout formats path dates without zero padding, e.g. 2024-1-7.
const DateLayout = "2006-1-2"

// Client calls GET <base>/<start>/<end>.
type Client struct {
	base   string
	client *http.Client
}

// Config describes how to build a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New builds a list client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("list base url is empty")
	}
	return &Client{
		base:   base,
		client: remote.PickHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}, nil
}

// FormatDate renders a day the way the list backend expects it.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// URL returns the request URL for a range.
func (c *Client) URL(r model.DateRange) string {
	return fmt.Sprintf("%s/%s/%s", c.base, FormatDate(r.Start), FormatDate(r.End))
}

// Fetch returns the records for r in backend order.
func (c *Client) Fetch(ctx context.Context, r model.DateRange) ([]model.ListRecord, error) {
	url := c.URL(r)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := remote.Do(c.client, req)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, &remote.DecodeError{URL: url, Err: err}
	}
	return records, nil
}

type wireRecord struct {
	Range   *string           `json:"range"`
	Title   *string           `json:"title"`
	Content *string           `json:"content"`
	Data    *model.RecordData `json:"data"`
}

func decodeRecords(body []byte) ([]model.ListRecord, error) {
	var wire []wireRecord
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, fmt.Errorf("expected a JSON array, got %s", bytes.TrimSpace(body))
	}
	records := make([]model.ListRecord, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.Range == nil:
			return nil, fmt.Errorf("record %d: missing range", i)
		case w.Title == nil:
			return nil, fmt.Errorf("record %d: missing title", i)
		case w.Content == nil:
			return nil, fmt.Errorf("record %d: missing content", i)
		}
		records = append(records, model.ListRecord{
			Range:   *w.Range,
			Title:   *w.Title,
			Content: *w.Content,
			Data:    w.Data,
		})
	}
	return records, nil
}
