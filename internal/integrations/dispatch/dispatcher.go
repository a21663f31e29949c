// Package dispatch performs outbound webhook HTTP deliveries. It is a
// leaf of the integrations module so both the delivery worker and the
// service layer can depend on it.
package dispatch

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crm_portal_backend/internal/integrations/repository"
	"crm_portal_backend/platform/config"
)

// Dispatcher performs the outbound HTTP request for one webhook
// delivery. It is invoked from the asynq worker, never inline with an
// API request.
type Dispatcher struct {
	client    *http.Client
	userAgent string
}

// New creates a webhook dispatcher.
func New(cfg config.WebhookConfig) *Dispatcher {
	timeout := cfg.GetWebhookTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.GetWebhookUserAgent(),
	}
}

// Dispatch POSTs the delivery body to the endpoint. The payload is
// signed with HMAC-SHA256 over the body using the endpoint secret. Any
// non-2xx response counts as a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint repository.Endpoint, delivery repository.Delivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, strings.NewReader(delivery.Body))
	if err != nil {
		return 0, fmt.Errorf("build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("X-Webhook-Event", delivery.EventType)
	req.Header.Set("X-Webhook-Delivery", delivery.ID.String())
	req.Header.Set("X-Webhook-Signature", SignPayload(endpoint.Secret, delivery.Body))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// SignPayload computes the hex HMAC-SHA256 signature receivers use to
// authenticate payloads.
func SignPayload(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
