package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"github.com/planline/planline/internal/provider"
)

// ErrServerNotRunning indicates the assistant server is unreachable.
var ErrServerNotRunning = errors.New("server not running - start the planline server first")

// ChatClient sends conversation turns to the assistant server.
type ChatClient struct {
	baseURL string
	client  *http.Client
}

// NewChatClient creates a chat client for the given server.
func NewChatClient(baseURL string) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Send posts the full message history and returns the assistant reply text.
func (c *ChatClient) Send(ctx context.Context, history []provider.Message) (string, error) {
	body := []byte(`{"messages":[]}`)
	var err error
	for i, msg := range history {
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.role", i), msg.Role); err != nil {
			return "", err
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("messages.%d.content", i), msg.Content); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		var netErr *net.OpError
		if errors.As(err, &netErr) || strings.Contains(err.Error(), "connection refused") {
			return "", ErrServerNotRunning
		}
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(reply)))
	}
	return string(reply), nil
}
