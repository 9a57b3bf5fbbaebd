// Package notification delivers best-effort operator notifications for
// accepted submissions. Delivery failure never reverses the store write and
// never changes the response sent to the caller.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/formgate-io/contact-gate/internal/models"
)

// Channel defines the interface for submission notification delivery.
type Channel interface {
	Send(ctx context.Context, sub *models.Submission) error
	Type() string
}

// EmailRelayChannel posts a send request to an external email-dispatch
// service. The relay owns actual mail delivery; this end is fire-and-forget.
type EmailRelayChannel struct {
	URL     string
	To      string
	From    string
	Timeout time.Duration
	client  *http.Client
}

// NewEmailRelayChannel creates an email notification channel addressed to a
// fixed operator mailbox.
func NewEmailRelayChannel(url, to, from string, timeout time.Duration) *EmailRelayChannel {
	return &EmailRelayChannel{
		URL:     url,
		To:      to,
		From:    from,
		Timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *EmailRelayChannel) Type() string {
	return "email"
}

func (e *EmailRelayChannel) Send(ctx context.Context, sub *models.Submission) error {
	payload := map[string]interface{}{
		"to":      e.To,
		"from":    e.From,
		"subject": fmt.Sprintf("New contact: %s", sub.Name),
		"body": fmt.Sprintf(
			"You have a new message:\n\nName: %s\nEmail: %s\nMessage: %s\n",
			sub.Name, sub.Email, sub.Body,
		),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "contact-gate/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email relay returned status %d", resp.StatusCode)
	}

	return nil
}

// LogChannel writes notifications to logs (for development and testing).
type LogChannel struct {
	logger func(format string, v ...interface{})
}

// NewLogChannel creates a log-based notification channel.
func NewLogChannel(logger func(format string, v ...interface{})) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Type() string {
	return "log"
}

func (l *LogChannel) Send(ctx context.Context, sub *models.Submission) error {
	l.logger("SUBMISSION ACCEPTED: id=%s name=%s email=%s source=%s",
		sub.ID, sub.Name, sub.Email, sub.SourceIdentity)
	return nil
}

// MultiChannel sends notifications to multiple channels.
type MultiChannel struct {
	channels []Channel
}

// NewMultiChannel creates a notification channel that fans out to multiple channels.
func NewMultiChannel(channels ...Channel) *MultiChannel {
	return &MultiChannel{channels: channels}
}

func (m *MultiChannel) Type() string {
	return "multi"
}

func (m *MultiChannel) Send(ctx context.Context, sub *models.Submission) error {
	var lastErr error
	successCount := 0

	for _, ch := range m.channels {
		if err := ch.Send(ctx, sub); err != nil {
			lastErr = fmt.Errorf("%s channel failed: %w", ch.Type(), err)
		} else {
			successCount++
		}
	}

	if successCount == 0 && len(m.channels) > 0 {
		return fmt.Errorf("all notification channels failed: %w", lastErr)
	}

	return nil
}
