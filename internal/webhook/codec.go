// Package webhook adapts the Dialogflow CX fulfillment wire format to the
// fulfillment dispatcher.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
)

// ErrMalformedRequest is returned when a callback body is not a CX request.
var ErrMalformedRequest = errors.New("webhook: malformed request")

// CXRequest is the subset of the CX WebhookRequest the service reads.
type CXRequest struct {
	DetectIntentResponseID string `json:"detectIntentResponseId,omitempty"`
	FulfillmentInfo        struct {
		Tag string `json:"tag"`
	} `json:"fulfillmentInfo"`
	SessionInfo struct {
		Session    string         `json:"session,omitempty"`
		Parameters map[string]any `json:"parameters"`
	} `json:"sessionInfo"`
	Text         string `json:"text,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// CXResponse is the CX WebhookResponse envelope.
type CXResponse struct {
	FulfillmentResponse FulfillmentResponse `json:"fulfillment_response"`
}

type FulfillmentResponse struct {
	Messages []ResponseMessage `json:"messages"`
}

// ResponseMessage carries either a text segment list or a custom payload.
type ResponseMessage struct {
	Text    *TextMessage `json:"text,omitempty"`
	Payload *Payload     `json:"payload,omitempty"`
}

type TextMessage struct {
	Text []string `json:"text"`
}

// Payload holds rich content rendered by the CX messenger: one row of chip
// groups.
type Payload struct {
	RichContent [][]RichElement `json:"richContent"`
}

type RichElement struct {
	Type    string `json:"type"`
	Options []Chip `json:"options"`
}

type Chip struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// DecodeRequest parses a CX callback body. Numbers in session parameters are
// kept as json.Number.
func DecodeRequest(r io.Reader) (fulfillment.Request, error) {
	var req CXRequest
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return fulfillment.Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return fulfillment.Request{
		Tag:        req.FulfillmentInfo.Tag,
		Parameters: req.SessionInfo.Parameters,
		Text:       req.Text,
	}, nil
}

// DecodeRequestBytes is DecodeRequest for an in-memory body.
func DecodeRequestBytes(body []byte) (fulfillment.Request, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return fulfillment.Request{}, fmt.Errorf("%w: empty body", ErrMalformedRequest)
	}
	return DecodeRequest(bytes.NewReader(body))
}

// EncodeReply converts a reply into the CX response shape. Text comes first,
// then a single payload message holding every option group as a chip list.
func EncodeReply(out reply.Reply) CXResponse {
	messages := make([]ResponseMessage, 0, 2)
	text := out.Text
	if text == nil {
		text = []string{}
	}
	messages = append(messages, ResponseMessage{Text: &TextMessage{Text: text}})

	if len(out.OptionGroups) > 0 {
		row := make([]RichElement, 0, len(out.OptionGroups))
		for _, group := range out.OptionGroups {
			chips := make([]Chip, 0, len(group))
			for _, opt := range group {
				chips = append(chips, Chip{Text: opt.Label, Value: opt.Value})
			}
			row = append(row, RichElement{Type: "chips", Options: chips})
		}
		messages = append(messages, ResponseMessage{Payload: &Payload{RichContent: [][]RichElement{row}}})
	}
	return CXResponse{FulfillmentResponse: FulfillmentResponse{Messages: messages}}
}
