// Package leads validates chat-widget contact submissions and hands them to
// a CRM. The CRM itself is external; this package only knows how to forward
// a validated lead to a configured webhook.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Lead is one contact submission from the chat widget.
type Lead struct {
	Name  string `json:"first_name"`
	Email string `json:"email"`

	// Source tags where the contact came from; always the chat widget here.
	Source string `json:"source"`
}

// Validate normalizes and checks a submission. Name is optional; the email
// must parse as an address.
func Validate(name, email string) (Lead, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Lead{}, fmt.Errorf("Please provide a valid email address.")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return Lead{}, fmt.Errorf("Please provide a valid email address.")
	}
	return Lead{
		Name:   strings.TrimSpace(name),
		Email:  addr.Address,
		Source: "AI Chat Widget",
	}, nil
}

// Sink receives validated leads.
type Sink interface {
	Save(ctx context.Context, lead Lead) error
}

// WebhookSink POSTs leads as JSON to a CRM webhook URL.
type WebhookSink struct {
	url   string
	httpc *http.Client
	log   logr.Logger
}

// NewWebhookSink creates a sink for the given webhook URL.
func NewWebhookSink(url string, log logr.Logger) *WebhookSink {
	return &WebhookSink{
		url:   url,
		httpc: &http.Client{Timeout: 15 * time.Second},
		log:   log,
	}
}

// Save forwards the lead. Non-2xx responses are errors so the widget can
// tell the visitor the submission did not go through.
func (s *WebhookSink) Save(ctx context.Context, lead Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("leads: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leads: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("leads: webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("leads: webhook returned HTTP %d", resp.StatusCode)
	}
	s.log.Info("lead forwarded", "email", lead.Email)
	return nil
}
