// Package notify delivers best-effort outbound notifications. Delivery
// failures are logged and swallowed; callers never see them.
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// deliveryTimeout bounds each outbound POST.
const deliveryTimeout = 5 * time.Second

// InterestedEvent is the payload posted to a caller-supplied webhook
// when a message is marked Interested.
type InterestedEvent struct {
	Event     string `json:"event"`
	EmailID   string `json:"email_id"`
	Subject   string `json:"subject"`
	Sender    string `json:"sender"`
	AccountID string `json:"account_id"`
}

// Notifier posts chat messages and webhook events.
type Notifier struct {
	slackWebhookURL string
	client          *http.Client
	logger          *zap.Logger
}

// New creates a Notifier. An empty slackWebhookURL disables Slack
// delivery without disabling webhook delivery.
func New(slackWebhookURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		slackWebhookURL: slackWebhookURL,
		client:          &http.Client{Timeout: deliveryTimeout},
		logger:          logger,
	}
}

// Slack posts a plain text chat message to the configured Slack
// webhook. A missing URL or delivery failure is silently dropped.
func (n *Notifier) Slack(text string) {
	if n.slackWebhookURL == "" {
		return
	}
	n.post(n.slackWebhookURL, map[string]string{"text": text})
}

// Interested posts an InterestedEvent to the given webhook URL.
func (n *Notifier) Interested(webhookURL string, event InterestedEvent) {
	if webhookURL == "" {
		return
	}
	event.Event = "interested"
	n.post(webhookURL, event)
}

// post delivers one JSON payload, swallowing every failure.
func (n *Notifier) post(url string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Warn("encoding notification", zap.Error(err))
		return
	}

	resp, err := n.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("delivering notification", zap.String("url", url), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("notification rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
	}
}
