package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/formgate-io/contact-gate/internal/models"
)

// DefaultSubject is the subject accepted submissions are published on.
const DefaultSubject = "contact.accepted"

// NATSChannel publishes accepted submissions to a NATS subject so downstream
// consumers (dashboards, CRM sync) can react without coupling to this service.
type NATSChannel struct {
	conn    *nats.Conn
	subject string
}

// NewNATSChannel connects to NATS and returns a publishing channel.
func NewNATSChannel(url, subject string) (*NATSChannel, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("contact-gate"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &NATSChannel{conn: conn, subject: subject}, nil
}

func (n *NATSChannel) Type() string {
	return "nats"
}

func (n *NATSChannel) Send(ctx context.Context, sub *models.Submission) error {
	payload := map[string]interface{}{
		"id":              sub.ID,
		"name":            sub.Name,
		"email":           sub.Email,
		"source_identity": sub.SourceIdentity,
		"created_at":      sub.CreatedAt.UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal nats payload: %w", err)
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}

	return nil
}

// Close drains the connection.
func (n *NATSChannel) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
