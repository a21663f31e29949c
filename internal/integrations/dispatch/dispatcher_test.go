package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"crm_portal_backend/internal/integrations/repository"
)

type testWebhookConfig struct{}

func (testWebhookConfig) GetWebhookTimeout() time.Duration { return 5 * time.Second }
func (testWebhookConfig) GetWebhookUserAgent() string      { return "crm-portal-webhooks/1.0" }

func TestDispatchSignsAndPostsPayload(t *testing.T) {
	var gotSignature, gotEvent, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Webhook-Signature")
		gotEvent = r.Header.Get("X-Webhook-Event")
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := New(testWebhookConfig{})
	endpoint := repository.Endpoint{ID: uuid.New(), URL: server.URL, Secret: "signing-secret"}
	delivery := repository.Delivery{ID: uuid.New(), EventType: "billing.invoice.paid", Body: `{"a":1}`}

	statusCode, err := d.Dispatch(context.Background(), endpoint, delivery)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if statusCode != http.StatusNoContent {
		t.Errorf("statusCode = %d, want 204", statusCode)
	}
	if gotSignature != SignPayload("signing-secret", `{"a":1}`) {
		t.Errorf("signature header = %q", gotSignature)
	}
	if gotEvent != "billing.invoice.paid" {
		t.Errorf("event header = %q", gotEvent)
	}
	if gotAgent != "crm-portal-webhooks/1.0" {
		t.Errorf("user agent = %q", gotAgent)
	}
}

func TestDispatchNon2xxIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := New(testWebhookConfig{})
	endpoint := repository.Endpoint{ID: uuid.New(), URL: server.URL, Secret: "s"}
	delivery := repository.Delivery{ID: uuid.New(), EventType: "x", Body: "{}"}

	statusCode, err := d.Dispatch(context.Background(), endpoint, delivery)
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if statusCode != http.StatusBadGateway {
		t.Errorf("statusCode = %d, want 502", statusCode)
	}
}

func TestSignPayloadFormat(t *testing.T) {
	sig := SignPayload("secret", `{"a":1}`)
	if len(sig) != len("sha256=")+64 {
		t.Errorf("signature length = %d, want hex sha256 with prefix", len(sig))
	}
	if sig != SignPayload("secret", `{"a":1}`) {
		t.Error("signature is not deterministic")
	}
	if sig == SignPayload("other", `{"a":1}`) {
		t.Error("signature does not depend on the secret")
	}
}
