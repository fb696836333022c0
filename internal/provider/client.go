// Package provider implements the OpenAI-compatible chat-completions client.
// It treats the language model as an opaque capability that returns either
// assistant text or a structured function call, in one shot or as a stream of
// incremental deltas.
package provider

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/planline/planline/internal/config"
)

// Message is a single chat turn sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FunctionCall is a structured mutation request emitted by the assistant.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Completion is a terminal assistant response: plain text, a function call,
// or both.
type Completion struct {
	Content      string
	FunctionCall *FunctionCall
}

// StreamChunk is one increment of a streamed response. Exactly one of the
// delta fields is usually populated per chunk; Err terminates the stream.
type StreamChunk struct {
	// ContentDelta is a fragment of assistant text.
	ContentDelta string
	// FunctionName carries the function-call name when it first appears.
	FunctionName string
	// ArgumentsDelta is a fragment of the function-call argument string.
	ArgumentsDelta string
	// FinishReason is set on the final delta ("stop" or "function_call").
	FinishReason string
	// Err reports a mid-stream transport failure.
	Err error
}

type statusErr struct {
	code int
	msg  string
}

func (e statusErr) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.code, e.msg)
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
}

// NewClient creates a provider client from the given configuration.
func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) buildRequest(ctx context.Context, messages []Message, stream bool) (*http.Request, error) {
	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "model", c.cfg.Model)
	for i, m := range messages {
		body, _ = sjson.SetBytes(body, fmt.Sprintf("messages.%d.role", i), m.Role)
		body, _ = sjson.SetBytes(body, fmt.Sprintf("messages.%d.content", i), m.Content)
	}
	body, _ = sjson.SetRawBytes(body, "functions", []byte(functionSchema))
	body, _ = sjson.SetBytes(body, "function_call", "auto")
	if stream {
		body, _ = sjson.SetBytes(body, "stream", true)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

// ChatCompletion performs a single non-streaming round trip.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (Completion, error) {
	req, err := c.buildRequest(ctx, messages, false)
	if err != nil {
		return Completion{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("provider: close response body error: %v", errClose)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debugf("provider request failed, status: %d, body: %s", resp.StatusCode, data)
		return Completion{}, statusErr{code: resp.StatusCode, msg: string(data)}
	}

	message := gjson.GetBytes(data, "choices.0.message")
	out := Completion{Content: message.Get("content").String()}
	if fc := message.Get("function_call"); fc.Exists() {
		out.FunctionCall = &FunctionCall{
			Name:      fc.Get("name").String(),
			Arguments: fc.Get("arguments").String(),
		}
	}
	return out, nil
}

// ChatCompletionStream performs a streaming round trip. The returned channel
// is closed after the final chunk; a transport failure mid-stream arrives as
// a chunk with Err set.
func (c *Client) ChatCompletionStream(ctx context.Context, messages []Message) (<-chan StreamChunk, error) {
	req, err := c.buildRequest(ctx, messages, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("provider: close response body error: %v", errClose)
		}
		log.Debugf("provider stream request failed, status: %d, body: %s", resp.StatusCode, data)
		return nil, statusErr{code: resp.StatusCode, msg: string(data)}
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer func() {
			if errClose := resp.Body.Close(); errClose != nil {
				log.Errorf("provider: close response body error: %v", errClose)
			}
		}()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(nil, 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 || !bytes.HasPrefix(line, []byte("data: ")) {
				continue
			}
			payload := bytes.TrimPrefix(line, []byte("data: "))
			if bytes.Equal(payload, []byte("[DONE]")) {
				return
			}
			chunk := parseDelta(payload)
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if errScan := scanner.Err(); errScan != nil {
			out <- StreamChunk{Err: errScan}
		}
	}()
	return out, nil
}

func parseDelta(payload []byte) StreamChunk {
	choice := gjson.GetBytes(payload, "choices.0")
	delta := choice.Get("delta")
	chunk := StreamChunk{
		ContentDelta: delta.Get("content").String(),
		FinishReason: choice.Get("finish_reason").String(),
	}
	if fc := delta.Get("function_call"); fc.Exists() {
		chunk.FunctionName = fc.Get("name").String()
		chunk.ArgumentsDelta = fc.Get("arguments").String()
	}
	return chunk
}
