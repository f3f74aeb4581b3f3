// Package notifications pushes application events to an external webhook.
// Delivery is best-effort: failures are logged, never propagated.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"fundo/events"
)

const webhookTimeout = 5 * time.Second

// Notifier posts event payloads to a configured webhook URL
type Notifier struct {
	url    string
	client *http.Client
}

// NewNotifier creates a webhook notifier. An empty URL disables delivery.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// Register subscribes the notifier to the events worth pushing out
func (n *Notifier) Register(bus *events.Bus) {
	if n.url == "" {
		log.Debug("Webhook notifications disabled, no URL configured")
		return
	}
	bus.Subscribe(events.EventTypeDepositRequested, n.handleDepositRequested)
	bus.Subscribe(events.EventTypeEarningsPosted, n.handleEarningsPosted)
}

func (n *Notifier) handleDepositRequested(ctx context.Context, event events.Event) {
	e, ok := event.(events.DepositRequestedEvent)
	if !ok {
		return
	}
	n.send(ctx, map[string]interface{}{
		"event":     "deposit_requested",
		"cotistaId": e.CotistaID,
		"depositId": e.DepositID,
		"txid":      e.TxID,
		"amount":    e.Amount.StringFixed(2),
	})
}

func (n *Notifier) handleEarningsPosted(ctx context.Context, event events.Event) {
	e, ok := event.(events.EarningsPostedEvent)
	if !ok {
		return
	}
	n.send(ctx, map[string]interface{}{
		"event":       "earnings_posted",
		"processed":   e.Processed,
		"failed":      e.Failed,
		"rateApplied": e.RateApplied,
	})
}

func (n *Notifier) send(ctx context.Context, payload map[string]interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Failed to marshal webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("Failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("event", payload["event"]).Warn("Webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"event":  payload["event"],
			"status": resp.StatusCode,
		}).Warn("Webhook endpoint rejected event")
	}
}
