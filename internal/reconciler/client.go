package reconciler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/planline/planline/internal/event"
)

// Client is the HTTP implementation of EventsAPI, talking to the planline
// server's /api/events surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an events client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchEvents retrieves the full collection.
func (c *Client) FetchEvents(ctx context.Context) ([]event.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch events: status %d", resp.StatusCode)
	}
	var events []event.Event
	if err = json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteEvent removes the event with the given id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.eventURL(id), nil)
	if err != nil {
		return err
	}
	return c.expectSuccess(req)
}

// UpdateEventTime patches only the time field of the event.
func (c *Client) UpdateEventTime(ctx context.Context, id, newTime string) error {
	body, _ := sjson.SetBytes([]byte(`{}`), "time", newTime)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.eventURL(id), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.expectSuccess(req)
}

func (c *Client) eventURL(id string) string {
	return c.baseURL + "/api/events/" + url.PathEscape(id)
}

func (c *Client) expectSuccess(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
	}
	return nil
}
