package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultWebhookTimeout = 5 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for logging.
	maxErrorBody = 200
)

// DeliveryError is returned when the webhook answers with a non-2xx status.
type DeliveryError struct {
	StatusCode int
	Body       string // truncated
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Webhook posts {"text": ...} to an incoming-webhook URL (Slack, Mattermost,
// Teams connectors and similar).
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook returns nil when url is empty.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type webhookPayload struct {
	Text string `json:"text"`
}

func (w *Webhook) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
