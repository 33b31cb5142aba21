package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EventPayload is the envelope delivered to the configured endpoint.
type EventPayload struct {
	ID        uuid.UUID   `json:"id"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notifier delivers signed event payloads to a single configured URL, the
// warden dashboard. Delivery retries in-process with a short backoff; after
// the retries are spent the event is dropped with a logged error, since the
// log itself remains the source of truth.
type Notifier struct {
	url     string
	secret  string
	retries int
	client  *http.Client
	logger  *slog.Logger
}

// NewNotifier builds a notifier. An empty url disables delivery: Send
// becomes a no-op, so callers never need to branch on configuration.
func NewNotifier(url, secret string, retries int, logger *slog.Logger) *Notifier {
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		url:     url,
		secret:  secret,
		retries: retries,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With("component", "webhook"),
	}
}

// Enabled reports whether a delivery URL is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Send delivers one event, retrying transport failures and 5xx responses.
// 4xx responses are not retried: the receiver rejected the payload and will
// reject it again.
func (n *Notifier) Send(ctx context.Context, eventType string, data interface{}) error {
	if !n.Enabled() {
		return nil
	}

	event := EventPayload{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var retryable bool
		lastErr, retryable = n.deliver(ctx, event.Type, payload)
		if lastErr == nil {
			return nil
		}
		if !retryable {
			break
		}
		n.logger.Warn("webhook delivery failed, retrying",
			"event_type", eventType, "attempt", attempt+1, "error", lastErr)
	}

	n.logger.Error("webhook delivery abandoned",
		"event_type", eventType, "error", lastErr)
	return fmt.Errorf("deliver webhook: %w", lastErr)
}

func (n *Notifier) deliver(ctx context.Context, eventType string, payload []byte) (error, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err), false
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hostelgate-Signature", Sign(n.secret, payload))
	req.Header.Set("X-Hostelgate-Event", eventType)
	req.Header.Set("User-Agent", "Hostelgate-Webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err), true
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode), true
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint rejected payload with HTTP %d", resp.StatusCode), false
	}
	return nil, false
}
