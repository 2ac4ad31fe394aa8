package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultQueueURL = "https://queue.fal.run"

// Queue statuses reported by the status endpoint.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Client talks to the fal queue API: submit a request, poll its status, then
// fetch the result.
type Client struct {
	credentials  string
	queueURL     string
	httpClient   *http.Client
	pollInterval time.Duration
}

type Option func(*Client)

func WithQueueURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.queueURL = strings.TrimRight(url, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewClient creates a fal client. credentials is either a single key or a
// "key_id:key_secret" pair.
func NewClient(credentials string, opts ...Option) *Client {
	c := &Client{
		credentials:  credentials,
		queueURL:     defaultQueueURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		pollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LogFunc receives provider log lines while a request is running.
type LogFunc func(message string)

type SubscribeOptions struct {
	// OnLog, when set, requests logs from the status endpoint and receives
	// each new line once.
	OnLog LogFunc
}

// Result mirrors what the fal JS client hands back: the model output under
// Data, plus the queue request id.
type Result struct {
	RequestID string
	Data      any
}

// Map returns the result in the {"data": ..., "requestId": ...} shape.
func (r *Result) Map() map[string]any {
	return map[string]any{
		"data":      r.Data,
		"requestId": r.RequestID,
	}
}

// APIError is returned for any non-2xx response from fal.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fal request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type submitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type statusResponse struct {
	Status string `json:"status"`
	Logs   []struct {
		Message string `json:"message"`
	} `json:"logs"`
}

// Subscribe submits input to the model endpoint and blocks until the result
// is available or ctx is done.
func (c *Client) Subscribe(ctx context.Context, modelID string, input any, opts SubscribeOptions) (*Result, error) {
	var submitted submitResponse
	if err := c.do(ctx, http.MethodPost, c.queueURL+"/"+strings.TrimLeft(modelID, "/"), input, &submitted); err != nil {
		return nil, err
	}
	if submitted.RequestID == "" {
		return nil, fmt.Errorf("fal queue returned no request id for %s", modelID)
	}

	statusURL := submitted.StatusURL
	if statusURL == "" {
		statusURL = fmt.Sprintf("%s/%s/requests/%s/status", c.queueURL, modelID, submitted.RequestID)
	}
	responseURL := submitted.ResponseURL
	if responseURL == "" {
		responseURL = fmt.Sprintf("%s/%s/requests/%s", c.queueURL, modelID, submitted.RequestID)
	}
	if opts.OnLog != nil {
		statusURL += "?logs=1"
	}

	seen := 0
	for {
		var status statusResponse
		if err := c.do(ctx, http.MethodGet, statusURL, nil, &status); err != nil {
			return nil, err
		}

		if opts.OnLog != nil {
			for ; seen < len(status.Logs); seen++ {
				opts.OnLog(status.Logs[seen].Message)
			}
		}

		if status.Status == StatusCompleted {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	var data any
	if err := c.do(ctx, http.MethodGet, responseURL, nil, &data); err != nil {
		return nil, err
	}

	return &Result{RequestID: submitted.RequestID, Data: data}, nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode fal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Key "+c.credentials)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read fal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse fal response: %w", err)
	}
	return nil
}

// errorMessage pulls a readable message out of a fal error body. fal uses
// {"detail": "..."} or {"detail": [{"msg": "..."}]} depending on the failure.
func errorMessage(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if len(body.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil {
			return detail
		}
		var details []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &details); err == nil && len(details) > 0 {
			msgs := make([]string, 0, len(details))
			for _, d := range details {
				if d.Msg != "" {
					msgs = append(msgs, d.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	return body.Message
}
