package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func newTestDispatcher() *fulfillment.Dispatcher {
	return fulfillment.New(catalog.Seed(), fees.NewCalculator([]string{"Bupa"}), nil, logging.New("error"))
}

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	evt := events.APIGatewayV2HTTPRequest{RawPath: path, Body: body}
	evt.RequestContext.HTTP.Method = method
	return evt
}

func TestHandleHealth(t *testing.T) {
	resp, err := handle(context.Background(), newTestDispatcher(), logging.New("error"), event(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleRejectsWrongMethodAndPath(t *testing.T) {
	d := newTestDispatcher()
	logger := logging.New("error")

	resp, _ := handle(context.Background(), d, logger, event(http.MethodGet, "/webhook", ""))
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	resp, _ = handle(context.Background(), d, logger, event(http.MethodPost, "/elsewhere", "{}"))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleWebhook(t *testing.T) {
	body := `{"fulfillmentInfo":{"tag":"ask_payment_method"},"sessionInfo":{"parameters":{}}}`
	evt := event(http.MethodPost, "/webhook", base64.StdEncoding.EncodeToString([]byte(body)))
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), newTestDispatcher(), logging.New("error"), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, `"richContent"`) || !strings.Contains(resp.Body, `"Self-pay"`) {
		t.Fatalf("expected payment chips, got %s", resp.Body)
	}
}

func TestHandleMalformedBody(t *testing.T) {
	resp, err := handle(context.Background(), newTestDispatcher(), logging.New("error"), event(http.MethodPost, "/webhook", "{"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Body, "Sorry, I couldn't process that.") {
		t.Fatalf("expected fallback reply, got %s", resp.Body)
	}
}
