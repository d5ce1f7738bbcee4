// Package api is the client for the FitTrack backend write/read API. Specs
// use it to seed data and to cross-check what the UI displays.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
)

// Client talks to the FitTrack backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	// MaxElapsed bounds retry backoff for transient failures.
	MaxElapsed time.Duration
}

// NewClient creates a backend client with a bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxElapsed: 15 * time.Second,
	}
}

// transientError marks a failure worth retrying (5xx, network).
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// do performs a request with exponential backoff on transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := func() error {
		err := c.doOnce(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		var transient *transientError
		if errors.As(err, &transient) {
			logger.Debug("backend %s %s transient failure, retrying: %v", method, path, err)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxElapsedTime = c.MaxElapsed

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return core.ErrBackendUnreachable.WithCause(err).WithDetails(map[string]interface{}{
			"method": method,
			"path":   path,
		})
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &transientError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transientError{err: err}
	}

	if resp.StatusCode >= 500 {
		return &transientError{err: fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(data))}
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse backend response: %w", err)
		}
	}
	return nil
}

// CreateRoutine persists a routine and returns it with its assigned ID.
func (c *Client) CreateRoutine(ctx context.Context, r *Routine) (*Routine, error) {
	var created Routine
	if err := c.do(ctx, http.MethodPost, "/v1/routines", r, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetRoutine fetches a routine by ID.
func (c *Client) GetRoutine(ctx context.Context, id string) (*Routine, error) {
	var r Routine
	if err := c.do(ctx, http.MethodGet, "/v1/routines/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoutines fetches all routines for the account.
func (c *Client) ListRoutines(ctx context.Context) ([]Routine, error) {
	var routines []Routine
	if err := c.do(ctx, http.MethodGet, "/v1/routines", nil, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// UpdateRoutine replaces a routine.
func (c *Client) UpdateRoutine(ctx context.Context, r *Routine) error {
	return c.do(ctx, http.MethodPut, "/v1/routines/"+url.PathEscape(r.ID), r, nil)
}

// DeleteRoutine removes a routine by ID.
func (c *Client) DeleteRoutine(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/routines/"+url.PathEscape(id), nil, nil)
}

// ListExercises fetches the exercise catalog, optionally filtered by muscle group.
func (c *Client) ListExercises(ctx context.Context, muscleGroup string) ([]Exercise, error) {
	path := "/v1/exercises"
	if muscleGroup != "" {
		path += "?muscleGroup=" + url.QueryEscape(muscleGroup)
	}
	var exercises []Exercise
	if err := c.do(ctx, http.MethodGet, path, nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetWeeklyReport fetches the aggregation for the week starting at weekStart
// (ISO date, Monday).
func (c *Client) GetWeeklyReport(ctx context.Context, weekStart string) (*WeeklyReport, error) {
	var report WeeklyReport
	path := "/v1/reports/weekly?weekStart=" + url.QueryEscape(weekStart)
	if err := c.do(ctx, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health checks backend reachability.
func (c *Client) Health(ctx context.Context) error {
	return c.doOnce(ctx, http.MethodGet, "/v1/health", nil, nil)
}
