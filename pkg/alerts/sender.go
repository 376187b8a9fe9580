package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Sender delivers one notification. Delivery backends are external; this
// package only knows how to hand a notification off.
type Sender interface {
	Send(n Notification) error
}

// LogSender writes notifications to the process log. It is the fallback when
// no webhook is configured.
type LogSender struct{}

func (LogSender) Send(n Notification) error {
	log.Printf("ALERT %s", n.String())
	return nil
}

// WebhookSender POSTs notifications as JSON to a configured URL.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *WebhookSender) Send(n Notification) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(n); err != nil {
		return err
	}

	resp, err := s.Client.Post(s.URL, "application/json", &body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
