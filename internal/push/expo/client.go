// Package expo sends push notifications through the Expo push relay.
package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"colors-app-go/internal/config"
)

const (
	DefaultURL = "https://exp.host/--/api/v2/push/send"

	// maxBatch is the relay's per-request message limit.
	maxBatch = 100

	StatusOK    = "ok"
	StatusError = "error"

	ErrorDeviceNotRegistered = "DeviceNotRegistered"
)

var ErrUnexpectedResponse = errors.New("expo: unexpected push response")

type Message struct {
	To       string         `json:"to"`
	Title    string         `json:"title,omitempty"`
	Body     string         `json:"body,omitempty"`
	Sound    string         `json:"sound,omitempty"`
	Priority string         `json:"priority,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Ticket is the relay's per-message receipt; tickets are returned in message order.
type Ticket struct {
	To      string
	Status  string
	ID      string
	Message string
	Error   string
}

func (t Ticket) OK() bool {
	return t.Status == StatusOK
}

func (t Ticket) DeviceGone() bool {
	return t.Error == ErrorDeviceNotRegistered
}

type Client struct {
	url         string
	accessToken string
	client      *http.Client
}

func NewClient(cfg config.PushConfig) *Client {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:         url,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send posts messages in batches and returns one ticket per message. A
// transport failure on a later batch still returns the tickets gathered so far.
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	tickets := make([]Ticket, 0, len(messages))
	for start := 0; start < len(messages); start += maxBatch {
		end := start + maxBatch
		if end > len(messages) {
			end = len(messages)
		}
		batch, err := c.sendBatch(ctx, messages[start:end])
		if err != nil {
			return tickets, err
		}
		tickets = append(tickets, batch...)
	}
	return tickets, nil
}

func (c *Client) sendBatch(ctx context.Context, messages []Message) ([]Ticket, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("expo: encode messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo: send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("expo: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "errors.0.message").String()
		return nil, fmt.Errorf("%w: status %d %s", ErrUnexpectedResponse, resp.StatusCode, msg)
	}

	return parseTickets(body, messages)
}

func parseTickets(body []byte, messages []Message) ([]Ticket, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrUnexpectedResponse)
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("%w: missing data", ErrUnexpectedResponse)
	}

	results := data.Array()
	if len(results) != len(messages) {
		return nil, fmt.Errorf("%w: %d tickets for %d messages", ErrUnexpectedResponse, len(results), len(messages))
	}

	tickets := make([]Ticket, len(results))
	for i, result := range results {
		tickets[i] = Ticket{
			To:      messages[i].To,
			Status:  result.Get("status").String(),
			ID:      result.Get("id").String(),
			Message: result.Get("message").String(),
			Error:   result.Get("details.error").String(),
		}
	}
	return tickets, nil
}

// IsExpoToken reports whether token looks like an Expo push token.
func IsExpoToken(token string) bool {
	for _, prefix := range []string{"ExponentPushToken[", "ExpoPushToken["} {
		if strings.HasPrefix(token, prefix) && strings.HasSuffix(token, "]") && len(token) > len(prefix)+1 {
			return true
		}
	}
	return false
}
