package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/aidf-dev/aidf/internal/types"
)

// WebhookConfig configures optional report delivery.
type WebhookConfig struct {
	Enabled           bool
	URL               string
	Events            []string // whitelist of statuses; empty means "all" (spec §9)
	Headers           map[string]string
	Retry             int // default 2
	Timeout           time.Duration // per-call timeout, default 10s
	IncludeIterations bool
}

func (c WebhookConfig) retryOrDefault() int {
	if c.Retry <= 0 {
		return 2
	}
	return c.Retry
}

func (c WebhookConfig) timeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

// shouldDeliver reports whether status passes the Events whitelist. An
// empty Events list means "all" (spec §9 open question (c), preserved).
func (c WebhookConfig) shouldDeliver(status types.Status) bool {
	if len(c.Events) == 0 {
		return true
	}
	for _, s := range c.Events {
		if types.Status(s) == status {
			return true
		}
	}
	return false
}

// slimmedPayload is the report with perIteration breakdowns stripped when
// IncludeIterations is false.
func slimmedPayload(r types.ExecutionReport, includeIterations bool) types.ExecutionReport {
	if includeIterations {
		return r
	}
	r.Tokens.PerIteration = nil
	r.Timing.PerIteration = nil
	if r.Cost != nil {
		slim := *r.Cost
		slim.PerIteration = nil
		r.Cost = &slim
	}
	return r
}

// DeliveryAttempt records one webhook POST attempt's outcome.
type DeliveryAttempt struct {
	Attempt    int
	StatusCode int
	Err        error
	Backoff    time.Duration
}

// Deliver POSTs the report as JSON per cfg, retrying up to cfg.Retry times
// with exponential backoff + 10% jitter. Deliver never returns an error to
// force caller action; the caller should log the returned attempts once and
// move on (spec §4.8: "any failure is logged once and does not propagate").
func Deliver(ctx context.Context, httpClient *http.Client, r types.ExecutionReport, cfg WebhookConfig) []DeliveryAttempt {
	if !cfg.Enabled || !cfg.shouldDeliver(r.Status) {
		return nil
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	payload := slimmedPayload(r, cfg.IncludeIterations)
	body, err := json.Marshal(payload)
	if err != nil {
		return []DeliveryAttempt{{Attempt: 1, Err: err}}
	}

	var attempts []DeliveryAttempt
	maxAttempts := cfg.retryOrDefault() + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		statusCode, err := postOnce(ctx, httpClient, cfg, body, r.Status, r.RunID)
		attempts = append(attempts, DeliveryAttempt{Attempt: attempt, StatusCode: statusCode, Err: err})

		if err == nil && statusCode >= 200 && statusCode < 300 {
			return attempts
		}
		if attempt == maxAttempts {
			return attempts
		}

		backoff := backoffDuration(attempt - 1)
		attempts[len(attempts)-1].Backoff = backoff
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return attempts
		}
	}
	return attempts
}

// backoffDuration computes min(100*2^attempt, 10000)ms plus up to 10% jitter.
func backoffDuration(attempt int) time.Duration {
	base := 100 * (1 << uint(attempt))
	if base > 10000 {
		base = 10000
	}
	jitter := float64(base) * 0.10 * rand.Float64()
	return time.Duration(float64(base)+jitter) * time.Millisecond
}

func postOnce(ctx context.Context, client *http.Client, cfg WebhookConfig, body []byte, status types.Status, runID string) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, cfg.timeoutOrDefault())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-AIDF-Event", string(status))
	req.Header.Set("X-AIDF-Run-ID", runID)

	for k, v := range cfg.Headers {
		req.Header.Set(k, os.ExpandEnv(v))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
