// Package email delivers rendered reports through the Brevo transactional
// API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoSink sends the digest to the configured recipient list. Credentials
// arrive out-of-band via configuration.
type BrevoSink struct {
	apiKey      string
	senderName  string
	senderEmail string
	recipients  []string
	endpoint    string
	client      *http.Client
}

var _ ports.NotificationSink = (*BrevoSink)(nil)

// NewBrevoSink registers sender identity and recipients.
func NewBrevoSink(apiKey, senderName, senderEmail string, recipients []string) *BrevoSink {
	return &BrevoSink{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		recipients:  recipients,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Send posts one transactional email with the document as HTML body.
func (s *BrevoSink) Send(ctx context.Context, subject string, document []byte) error {
	if s.apiKey == "" || len(s.recipients) == 0 {
		return fmt.Errorf("brevo sink misconfigured")
	}

	to := make([]address, 0, len(s.recipients))
	for _, r := range s.recipients {
		to = append(to, address{Email: r})
	}

	body, err := json.Marshal(map[string]any{
		"sender":      address{Name: s.senderName, Email: s.senderEmail},
		"to":          to,
		"subject":     subject,
		"htmlContent": string(document),
	})
	if err != nil {
		return fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}
