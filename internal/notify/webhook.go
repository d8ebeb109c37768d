// SPDX-License-Identifier: AGPL-3.0-only
package notify

import (
	"context"
	"fmt"
	"net/http"
	urlpkg "net/url"
	"time"
)

// Default webhook settings
const (
	DefaultWebhookHost   = "localhost"
	DefaultWebhookPort   = 8787
	DefaultWebhookSender = "runtime:reminder"
)

// WebhookNotifier appends reminders to a room on a local chat server
// (GET /room/<room>/append?sender=..&content=..&tag=reply)
type WebhookNotifier struct {
	Host   string
	Port   int
	Room   string
	Sender string
	Client *http.Client
}

// NewWebhookNotifier returns a webhook notifier with defaults filled in
func NewWebhookNotifier(host string, port int, room, sender string) *WebhookNotifier {
	if host == "" || host == "0.0.0.0" {
		host = DefaultWebhookHost
	}
	if port == 0 {
		port = DefaultWebhookPort
	}
	if sender == "" {
		sender = DefaultWebhookSender
	}
	return &WebhookNotifier{
		Host:   host,
		Port:   port,
		Room:   room,
		Sender: sender,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Notify implements Notifier
func (w *WebhookNotifier) Notify(ctx context.Context, title, message string) error {
	if w.Room == "" {
		return fmt.Errorf("webhook room is not configured")
	}
	baseURL := fmt.Sprintf("http://%s:%d/room/%s/append", w.Host, w.Port, urlpkg.PathEscape(w.Room))
	params := urlpkg.Values{}
	params.Set("sender", w.Sender)
	params.Set("content", fmt.Sprintf("%s\n\n%s", title, message))
	params.Set("tag", "reply")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %s", resp.Status)
	}
	return nil
}
