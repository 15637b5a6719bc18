// Package webhook forwards match lifecycle events to an external notification
// gateway over HTTP. It is an optional delivery channel alongside the stored
// in-app notifications.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuskeep/lostfound/internal/domain"
)

// Client is a minimal HTTP client implementing domain.Notifier against a
// webhook endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a webhook client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// matchEvent is the JSON body posted for every event.
type matchEvent struct {
	Event          string    `json:"event"`
	MatchID        int64     `json:"matchId"`
	LostPostingID  int64     `json:"lostPostingId"`
	FoundPostingID int64     `json:"foundPostingId"`
	LostOwnerID    int64     `json:"lostOwnerId"`
	FoundOwnerID   int64     `json:"foundOwnerId"`
	Score          float64   `json:"score"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// MatchFound posts a match.found event.
func (c *Client) MatchFound(ctx context.Context, m *domain.Match) error {
	return c.post(ctx, "match.found", m)
}

// MatchUpdated posts a match.updated event.
func (c *Client) MatchUpdated(ctx context.Context, m *domain.Match) error {
	return c.post(ctx, "match.updated", m)
}

// MatchCancelled posts a match.cancelled event.
func (c *Client) MatchCancelled(ctx context.Context, m *domain.Match) error {
	return c.post(ctx, "match.cancelled", m)
}

func (c *Client) post(ctx context.Context, event string, m *domain.Match) error {
	body := matchEvent{
		Event:          event,
		MatchID:        m.ID,
		LostPostingID:  m.LostPostingID,
		FoundPostingID: m.FoundPostingID,
		LostOwnerID:    m.LostOwnerID,
		FoundOwnerID:   m.FoundOwnerID,
		Score:          m.MatchWeight,
		Status:         string(m.Status),
		OccurredAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", event, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s event: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s event: status %d: %s", event, resp.StatusCode, snippet)
	}
	return nil
}
