package chatapi

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
)

type FailureKind string

const (
	FailureNetwork FailureKind = "network"
	FailureStatus  FailureKind = "status"
	FailureDecode  FailureKind = "decode"
)

// RequestFailure is returned for every failed chat exchange.
type RequestFailure struct {
	Kind       FailureKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *RequestFailure) Error() string {
	switch e.Kind {
	case FailureStatus:
		if e.Detail != "" {
			return e.Detail
		}
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	case FailureDecode:
		if e.Err != nil {
			return "invalid response from server: " + e.Err.Error()
		}
		return "invalid response from server"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "request failed"
	}
}

func (e *RequestFailure) Unwrap() error { return e.Err }

// maxErrorBody bounds how much of a non-2xx body is read looking for a detail.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Ask posts question to {base}/chat and returns the decoded answer.
func (c *Client) Ask(ctx context.Context, question string) (*ChatResponse, error) {
	data, err := json.Marshal(ChatRequest{Question: question})
	if err != nil {
		return nil, &RequestFailure{Kind: FailureNetwork, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(data))
	if err != nil {
		return nil, &RequestFailure{Kind: FailureNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestFailure{Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailure{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Detail:     readDetail(resp.Body),
		}
	}

	var out ChatResponse
	var raw map[string]json.RawMessage
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestFailure{Kind: FailureNetwork, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RequestFailure{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: err}
	}
	if _, ok := raw["answer"]; !ok {
		return nil, &RequestFailure{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: errors.New("missing answer")}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestFailure{Kind: FailureDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return &out, nil
}

func readDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Detail)
}

// Health fetches {base}/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("chatapi: creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chatapi: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatapi: health returned %d", resp.StatusCode)
	}
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("chatapi: decoding health: %w", err)
	}
	return &h, nil
}
