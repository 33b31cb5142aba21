package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Speech is the spoken-interaction collaborator. Listen returns the
// transcribed utterance and whether anything intelligible was heard; Speak
// voices a prompt. A Listen that hears nothing is an expected outcome, not an
// error, so the interface stays error-free and the implementation absorbs
// transport failures as "nothing heard".
type Speech interface {
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, bool)
	Speak(ctx context.Context, text string)
}

type listenRequest struct {
	TimeoutSeconds     float64 `json:"timeout_seconds"`
	PhraseLimitSeconds float64 `json:"phrase_limit_seconds"`
}

type listenResponse struct {
	Text  string `json:"text"`
	Heard bool   `json:"heard"`
}

type sayRequest struct {
	Text string `json:"text"`
}

// HTTPSpeech talks to a local speech sidecar exposing POST /listen and
// POST /say. The kiosk runs the microphone and TTS engine; this process only
// exchanges text with it.
type HTTPSpeech struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSpeech creates a speech client for the given sidecar URL.
func NewHTTPSpeech(baseURL string, logger *slog.Logger) *HTTPSpeech {
	return &HTTPSpeech{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With("component", "speech"),
	}
}

// Listen asks the sidecar for one utterance. Transport and decode failures
// are logged and reported as nothing heard.
func (s *HTTPSpeech) Listen(ctx context.Context, timeout, phraseLimit time.Duration) (string, bool) {
	req := listenRequest{
		TimeoutSeconds:     timeout.Seconds(),
		PhraseLimitSeconds: phraseLimit.Seconds(),
	}

	var resp listenResponse
	if err := s.post(ctx, "/listen", req, &resp); err != nil {
		s.logger.Warn("listen request failed", "error", err)
		return "", false
	}
	if !resp.Heard {
		return "", false
	}
	return resp.Text, true
}

// Speak voices the prompt. Failures are logged and swallowed; a silent kiosk
// is preferable to a stalled recognition flow.
func (s *HTTPSpeech) Speak(ctx context.Context, text string) {
	if err := s.post(ctx, "/say", sayRequest{Text: text}, nil); err != nil {
		s.logger.Warn("speak request failed", "error", err)
	}
}

func (s *HTTPSpeech) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("speech sidecar returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

var _ Speech = (*HTTPSpeech)(nil)
