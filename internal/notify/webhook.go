package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/campus-match/internal/models"
)

// WebhookSender POSTs notifications to an external delivery endpoint
// (mail relay, mobile push bridge). Delivery itself lives outside this
// service.
type WebhookSender struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewWebhookSender(endpoint, key string) *WebhookSender {
	return &WebhookSender{Endpoint: endpoint, Key: key, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (w *WebhookSender) Send(ctx context.Context, n models.Notification) error {
	b, err := json.Marshal(map[string]any{"notification": n})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Key != "" {
		req.Header.Set("Authorization", "Bearer "+w.Key)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook delivery failed: %s", resp.Status)
	}
	return nil
}
