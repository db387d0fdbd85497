// Package notify delivers voucher depictions and sale notices to vendor
// inboxes. Delivery is per target and independent: one failing target never
// affects another.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

// Payload is one message for one inbox. Image is optional.
type Payload struct {
	Text      string
	Image     []byte
	ImageName string
}

// Notifier delivers a payload to a single target.
type Notifier interface {
	Deliver(ctx context.Context, targetID string, p Payload) error
}

// ErrDelivery is returned when the transport rejects a delivery.
var ErrDelivery = errors.New("delivery rejected")

// QRSize is the edge length, in pixels, of rendered codes.
const QRSize = 256

// RenderQR encodes link as a PNG QR code.
func RenderQR(link string) ([]byte, error) {
	if link == "" {
		return nil, errors.New("empty link")
	}
	return qrcode.Encode(link, qrcode.Medium, QRSize)
}

// webhookMessage is the JSON body posted by WebhookNotifier.
type webhookMessage struct {
	TargetID  string `json:"target_id"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	ImageName string `json:"image_name,omitempty"`
	SentAt    string `json:"sent_at"`
}

// WebhookNotifier posts each payload as JSON to a single endpoint, which is
// expected to relay it to the chat platform.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

// NewWebhookNotifier returns a notifier with a plain client bounded by timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Now:    time.Now,
	}
}

// NewSafeWebhookNotifier returns a notifier whose client refuses private,
// loopback and link-local destinations, checked after DNS resolution.
func NewSafeWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		Build()
	return &WebhookNotifier{
		URL:    url,
		Client: safeurl.Client(cfg).Client,
		Now:    time.Now,
	}
}

// Deliver implements Notifier. Any non-2xx answer is a failure.
func (n *WebhookNotifier) Deliver(ctx context.Context, targetID string, p Payload) error {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	msg := webhookMessage{
		TargetID:  targetID,
		Text:      p.Text,
		ImageName: p.ImageName,
		SentAt:    now().UTC().Format(time.RFC3339),
	}
	if len(p.Image) > 0 {
		msg.Image = base64.StdEncoding.EncodeToString(p.Image)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver to %s: %w", targetID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver to %s: %w: status %d", targetID, ErrDelivery, resp.StatusCode)
	}
	return nil
}

// LogNotifier writes deliveries to the log and always succeeds. It is used
// when no webhook is configured.
type LogNotifier struct{}

// Deliver implements Notifier.
func (LogNotifier) Deliver(_ context.Context, targetID string, p Payload) error {
	log.Info().
		Str("target_id", targetID).
		Int("image_bytes", len(p.Image)).
		Str("text", p.Text).
		Msg("notification")
	return nil
}
