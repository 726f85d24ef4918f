package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

var whatsappTracer = otel.Tracer("clinic.internal.messaging.whatsapp")

// ErrMissingCredentials is returned when Twilio credentials are not configured.
var ErrMissingCredentials = errors.New("messaging: twilio credentials missing")

const (
	twilioAPIBase   = "https://api.twilio.com"
	whatsappScheme  = "whatsapp:"
	maxSendAttempts = 3
)

// WhatsAppSender posts WhatsApp messages using Twilio's REST API.
type WhatsAppSender struct {
	accountSID string
	authToken  string
	from       string
	apiBase    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewWhatsAppSender builds a sender with sane defaults. from is the Twilio
// WhatsApp-enabled number, with or without the "whatsapp:" prefix.
func NewWhatsAppSender(accountSID, authToken, from string, logger *logging.Logger) *WhatsAppSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &WhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		apiBase:    twilioAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SendChat dispatches a single WhatsApp message, retrying transient failures.
func (s *WhatsAppSender) SendChat(ctx context.Context, to, body string) error {
	if s.accountSID == "" || s.authToken == "" {
		return ErrMissingCredentials
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(s.from) == "" {
		return errors.New("messaging: from required")
	}
	if strings.TrimSpace(body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := whatsappTracer.Start(ctx, "messaging.whatsapp.send")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.to", to))

	payload := url.Values{}
	payload.Set("To", whatsappAddress(to))
	payload.Set("From", whatsappAddress(s.from))
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.apiBase, s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if err != nil {
			lastErr = err
			break
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				s.logger.Info("whatsapp message sent", "to", to, "sid", messageSID(respBody))
				return nil
			}
			lastErr = fmt.Errorf("messaging: twilio send failed: %s", formatTwilioError(resp.StatusCode, respBody))
			// Don't retry non-rate-limit 4xx errors.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				break
			}
		}

		if attempt < maxSendAttempts {
			sleep := time.Duration(200+rand.Intn(300)) * time.Millisecond
			select {
			case <-ctx.Done():
				span.RecordError(ctx.Err())
				return ctx.Err()
			case <-time.After(sleep):
			}
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
	}
	return lastErr
}

func whatsappAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsappScheme) {
		return number
	}
	return whatsappScheme + number
}

func messageSID(body []byte) string {
	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.SID
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	return fmt.Sprintf("status %d: %s", status, trimmed)
}

// StubChatSender logs chat messages instead of sending them.
type StubChatSender struct {
	logger *logging.Logger
}

// NewStubChatSender creates a chat sender used when Twilio is not configured.
func NewStubChatSender(logger *logging.Logger) *StubChatSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubChatSender{logger: logger}
}

// SendChat logs the message but doesn't send it.
func (s *StubChatSender) SendChat(ctx context.Context, to, body string) error {
	s.logger.Info("stub chat sender: would send whatsapp message", "to", to, "length", len(body))
	return nil
}
