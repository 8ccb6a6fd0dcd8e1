package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"uat-portal-api/internal/service"
)

// WebhookSink posts events to a Teams incoming webhook.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink builds a WebhookSink; returns nil when no URL is
// configured so the dispatcher can skip it.
func NewWebhookSink(url string) *WebhookSink {
	if url == "" {
		return nil
	}
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Deliver implements Sink.
func (s *WebhookSink) Deliver(evt service.Event) error {
	payload := map[string]string{
		"text": fmt.Sprintf("**%s** (%s): %s", evt.Type, evt.Country, evt.Message),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
