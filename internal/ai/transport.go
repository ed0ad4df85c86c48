package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// endpoint posts JSON to one URL with retry and backoff on 429, 5xx and transient
// network failures.
type endpoint struct {
	client    *http.Client
	url       string
	header    http.Header
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	// host is reported in UnreachableError when the connection itself fails.
	host string
}

func newEndpoint(url string, timeout time.Duration, attempts int, baseDelay, maxDelay time.Duration) *endpoint {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if attempts <= 0 {
		attempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &endpoint{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		header:    http.Header{},
		attempts:  attempts,
		baseDelay: baseDelay,
		maxDelay:  maxDelay,
	}
}

// post marshals body, sends it and decodes a 2xx reply into out. It returns the
// provider request id when one is present.
func (e *endpoint) post(ctx context.Context, body any, out any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	backoff := e.baseDelay
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		for k, vs := range e.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < e.attempts {
				lastErr = err
				if err := sleepCtx(ctx, withJitter(backoff)); err != nil {
					return "", err
				}
				backoff *= 2
				continue
			}
			if e.host != "" {
				return "", &UnreachableError{Host: e.host, Err: err}
			}
			return "", fmt.Errorf("http request: %w", err)
		}
		requestID := extractRequestID(resp)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return requestID, fmt.Errorf("decode response: %w", err)
			}
			return requestID, nil
		}
		apiErr := readAPIError(resp)
		resp.Body.Close()
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if retryable && attempt < e.attempts {
			wait := withJitter(backoff)
			if wait > e.maxDelay {
				wait = e.maxDelay
			}
			if secs, err := parseRetryAfterSeconds(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
			lastErr = apiErr
			if err := sleepCtx(ctx, wait); err != nil {
				return "", err
			}
			backoff *= 2
			continue
		}
		return requestID, classifyAPIError(apiErr, resp)
	}
	return "", lastErr
}

// readAPIError decodes the provider error body. Providers disagree on its shape:
// {"error":{"message","code"}}, {"error":"..."}, {"message":"..."} or {"detail":"..."}.
func readAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: extractRequestID(resp)}
	switch v := raw["error"].(type) {
	case map[string]any:
		apiErr.Message, _ = v["message"].(string)
		apiErr.Code, _ = v["code"].(string)
	case string:
		apiErr.Message = v
	}
	if apiErr.Message == "" {
		if msg, ok := raw["message"].(string); ok {
			apiErr.Message = msg
		} else if msg, ok := raw["detail"].(string); ok {
			apiErr.Message = msg
		}
	}
	if apiErr.Code == "" {
		apiErr.Code, _ = raw["code"].(string)
	}
	return apiErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds interprets a Retry-After value as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "Openrouter-Request-ID", "X-Amzn-Requestid"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// withJitter applies +/- 20% jitter to a backoff duration.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	out := time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	if out <= 0 {
		return d
	}
	return out
}
