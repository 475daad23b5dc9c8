package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/verticalview/client-portal/internal/core/domain"
)

type call struct {
	operation string
	method    string
	table     string
	recordID  string
	query     url.Values
	payload   any
}

func (c call) endpoint(baseURL string) string {
	endpoint := baseURL + "/" + url.PathEscape(c.table)
	if c.recordID != "" {
		endpoint += "/" + url.PathEscape(c.recordID)
	}
	if len(c.query) > 0 {
		endpoint += "?" + c.query.Encode()
	}
	return endpoint
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	operation := "airtable." + req.operation
	start := time.Now()

	run := func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("airtable %s rate limit wait: %w", req.operation, err)
			}
		}
		return c.roundTrip(ctx, req, out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, run, classifyStoreError)
	} else {
		err = run(ctx)
	}
	if c.observer != nil {
		c.observer.ObserveStoreCall(req.table, req.operation, callOutcome(err), time.Since(start))
	}
	return wrapStoreError(operation, err)
}

func (c *Client) roundTrip(ctx context.Context, req call, out any) error {
	var body io.Reader
	if req.payload != nil {
		raw, err := json.Marshal(req.payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.endpoint(c.baseURL), body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", req.operation, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("airtable %s request: %w", req.operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return newStoreStatusError(req.operation, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.operation, err)
	}
	return nil
}

// StoreStatusError is a non-2xx answer from the store. A 404 also matches
// domain.ErrNotFound.
type StoreStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Type       string
	Message    string
	Body       string
	// RetryAfter is the pause requested by a Retry-After header.
	RetryAfter time.Duration
}

func (e *StoreStatusError) Error() string {
	if e == nil {
		return "airtable status error"
	}
	detail := strings.TrimSpace(e.Message)
	if e.Type != "" && detail != "" {
		detail = e.Type + ": " + detail
	} else if e.Type != "" {
		detail = e.Type
	}
	if detail == "" {
		detail = strings.TrimSpace(e.Body)
	}
	if detail == "" {
		return fmt.Sprintf("airtable %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("airtable %s status: %s: %s", e.Operation, e.Status, detail)
}

// Is lets a 404 answer match domain.ErrNotFound.
func (e *StoreStatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// StoreMessage returns the store's own message when err carries one, else
// err's text.
func StoreMessage(err error) string {
	var statusErr *StoreStatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func newStoreStatusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	statusErr := &StoreStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(raw)),
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
		statusErr.RetryAfter = time.Duration(secs) * time.Second
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Error) > 0 {
		var code string
		if json.Unmarshal(envelope.Error, &code) == nil {
			statusErr.Type = code
		} else {
			var detail struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			}
			if json.Unmarshal(envelope.Error, &detail) == nil {
				statusErr.Type = detail.Type
				statusErr.Message = detail.Message
			}
		}
	}
	return statusErr
}
