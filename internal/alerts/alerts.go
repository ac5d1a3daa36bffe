// Package alerts pushes a finished verdict out to chat channels when the
// query resolves to a signal worth a human's attention.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger is the narrow logging surface this package needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Notifier pushes a text message to whatever channel it wraps. A failed
// send is reported but must never abort the caller's analysis.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TelegramNotifier posts to the Telegram Bot API. A zero-value
// TelegramNotifier (no token/chat ID) is a deliberate no-op, matching the
// original's "not configured; skip" behavior.
type TelegramNotifier struct {
	BotToken   string
	ChatID     string
	HTTPClient *http.Client
	logger     Logger
}

func NewTelegramNotifier(botToken, chatID string, logger Logger) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatID:     chatID,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.BotToken)
	payload, err := json.Marshal(map[string]string{"chat_id": t.ChatID, "text": text})
	if err != nil {
		return fmt.Errorf("alerts: marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("alerts: building telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		t.warn("alerts: telegram send failed", "error", err)
		return fmt.Errorf("alerts: sending telegram message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.warn("alerts: telegram returned non-200", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("alerts: telegram returned status %d", resp.StatusCode)
	}
	return nil
}

func (t *TelegramNotifier) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}

// SlackNotifier posts a plain-text message to an incoming webhook URL, for
// deployments that prefer Slack over Telegram.
type SlackNotifier struct {
	WebhookURL string
	HTTPClient *http.Client
	logger     Logger
}

func NewSlackNotifier(webhookURL string, logger Logger) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	if s.WebhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("alerts: marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("alerts: building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		s.warn("alerts: slack send failed", "error", err)
		return fmt.Errorf("alerts: sending slack message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.warn("alerts: slack returned non-200", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("alerts: slack returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *SlackNotifier) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

// ShouldAlert reports whether a verdict is worth pushing out: the panic
// rule or a narrative trap, the two states a human should see immediately.
func ShouldAlert(isPanic, isTrap bool) bool {
	return isPanic || isTrap
}
