// Package notify sends push notifications about finished deployments.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"atelier/config"
	"atelier/event"
)

var log = event.Log

// NtfySender sends push notifications via ntfy.sh
type NtfySender struct {
	cfg    *config.Config
	client *http.Client
}

// NtfyMessage represents a ntfy notification
type NtfyMessage struct {
	Title    string
	Message  string
	Actions  []NtfyAction
	Tags     []string
	Priority int
}

// NtfyAction represents a clickable action button
type NtfyAction struct {
	Action string `json:"action"` // "view" or "http"
	Label  string `json:"label"`
	URL    string `json:"url"`
	Clear  bool   `json:"clear,omitempty"`
}

// NewNtfySender creates a new ntfy sender
func NewNtfySender(cfg *config.Config) *NtfySender {
	return &NtfySender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendDeployNotification reports a finished deployment. viewURL, when
// set, becomes an "open site" action.
func (n *NtfySender) SendDeployNotification(ctx context.Context, target, viewURL string) error {
	msg := NtfyMessage{
		Title:    "🎨 Portfolio deployed",
		Message:  fmt.Sprintf("Site published to %s", target),
		Priority: 3,
		Tags:     []string{"art", "rocket"},
	}
	if viewURL != "" {
		msg.Actions = []NtfyAction{{Action: "view", Label: "Open site", URL: viewURL}}
	}
	return n.Send(ctx, msg)
}

// SendFailure reports a failed step.
func (n *NtfySender) SendFailure(ctx context.Context, step string, err error) error {
	return n.Send(ctx, NtfyMessage{
		Title:    fmt.Sprintf("❌ %s failed", step),
		Message:  err.Error(),
		Priority: 4,
		Tags:     []string{"warning"},
	})
}

// Send posts a notification. The message is the body, metadata goes into
// headers. Disabled senders do nothing.
func (n *NtfySender) Send(ctx context.Context, msg NtfyMessage) error {
	if !n.cfg.Ntfy.Enabled {
		log.Debug("ntfy notifications disabled")
		return nil
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(n.cfg.Ntfy.Server, "/"), n.cfg.Ntfy.Topic)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(msg.Message))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers according to ntfy documentation
	req.Header.Set("Title", msg.Title)
	if msg.Priority > 0 {
		req.Header.Set("Priority", fmt.Sprintf("%d", msg.Priority))
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}

	if len(msg.Actions) > 0 {
		actionsJSON, err := json.Marshal(msg.Actions)
		if err != nil {
			return fmt.Errorf("failed to encode actions: %w", err)
		}
		req.Header.Set("Actions", string(actionsJSON))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	log.Infof("📱 ntfy notification sent: %s", msg.Title)
	return nil
}
