package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
)

type captureFulfiller struct {
	got fulfillment.Request
	out reply.Reply
}

func (c *captureFulfiller) Handle(_ context.Context, req fulfillment.Request) reply.Reply {
	c.got = req
	return c.out
}

func TestDecodeRequest(t *testing.T) {
	body := `{"detectIntentResponseId":"abc","fulfillmentInfo":{"tag":"get_doctor_list"},
		"sessionInfo":{"parameters":{"specialty":"Neurology","policy_number":123456}},"text":"neuro please"}`

	req, err := DecodeRequest(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "get_doctor_list", req.Tag)
	assert.Equal(t, "neuro please", req.Text)
	assert.Equal(t, "Neurology", req.Parameters["specialty"])
	assert.Equal(t, json.Number("123456"), req.Parameters["policy_number"])
}

func TestDecodeRequestMalformed(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader(`{"fulfillmentInfo":`))
	assert.ErrorIs(t, err, ErrMalformedRequest)

	_, err = DecodeRequestBytes([]byte("  "))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestEncodeReplyShape(t *testing.T) {
	out := reply.Reply{
		Text: []string{"Pick one"},
		OptionGroups: [][]reply.Option{
			{{Label: "Tue, 16 Sep 15:45", Value: "Book appointment with X on 2025-09-16 at 15:45"}},
			{{Label: reply.GoBackLabel, Value: reply.GoBackValue}},
		},
	}
	raw, err := json.Marshal(EncodeReply(out))
	require.NoError(t, err)

	want := `{"fulfillment_response":{"messages":[` +
		`{"text":{"text":["Pick one"]}},` +
		`{"payload":{"richContent":[[` +
		`{"type":"chips","options":[{"text":"Tue, 16 Sep 15:45","value":"Book appointment with X on 2025-09-16 at 15:45"}]},` +
		`{"type":"chips","options":[{"text":"Go Back","value":"Go back to doctor list"}]}` +
		`]]}}]}}`
	assert.JSONEq(t, want, string(raw))
}

func TestEncodeReplyTextOnly(t *testing.T) {
	resp := EncodeReply(reply.Fallback())
	require.Len(t, resp.FulfillmentResponse.Messages, 1)
	assert.Nil(t, resp.FulfillmentResponse.Messages[0].Payload)
	assert.Equal(t, reply.Fallback().Text, resp.FulfillmentResponse.Messages[0].Text.Text)
}

func TestFulfillPassesRequestThrough(t *testing.T) {
	fake := &captureFulfiller{out: reply.Text("hello")}
	h := NewHandler(fake, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"fulfillmentInfo":{"tag":"ask_payment_method"},"sessionInfo":{"parameters":{}}}`))
	h.Fulfill(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ask_payment_method", fake.got.Tag)
	assert.JSONEq(t, `{"fulfillment_response":{"messages":[{"text":{"text":["hello"]}}]}}`, rec.Body.String())
}

func TestFulfillMalformedBody(t *testing.T) {
	fake := &captureFulfiller{}
	h := NewHandler(fake, nil)

	rec := httptest.NewRecorder()
	h.Fulfill(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp CXResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.FulfillmentResponse.Messages, 1)
	assert.Equal(t, []string{"Sorry, I couldn't process that."}, resp.FulfillmentResponse.Messages[0].Text.Text)
	assert.Empty(t, fake.got.Tag)
}

func TestFulfillRoundTripWithDispatcher(t *testing.T) {
	d := fulfillment.New(catalog.Seed(), fees.NewCalculator([]string{"Bupa"}), nil, nil)
	h := NewHandler(d, nil)

	body := `{"fulfillmentInfo":{"tag":"get_doctor_list"},"sessionInfo":{"parameters":{"specialty":"dermatology","postcode":"cm15 8eh"}}}`
	rec := httptest.NewRecorder()
	h.Fulfill(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CXResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	msgs := resp.FulfillmentResponse.Messages
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[1].Payload)
	chips := msgs[1].Payload.RichContent[0][0]
	assert.Equal(t, "chips", chips.Type)
	require.Len(t, chips.Options, 1)
	assert.Equal(t, "Dr. Emily Davis", chips.Options[0].Value)
}

func TestFulfillConfirmBookingWithDoubleDateTime(t *testing.T) {
	d := fulfillment.New(catalog.Seed(), fees.NewCalculator([]string{"Bupa"}), nil, nil)
	h := NewHandler(d, nil)

	body := `{"fulfillmentInfo":{"tag":"confirm_booking"},"sessionInfo":{"parameters":{` +
		`"doctor_name":"Miss Tasha Gandamihardja","person_name":{"name":"Jane Doe"},"payment_method":"self pay",` +
		`"appointment_datetime":{"year":2025.0,"month":9.0,"day":30.0,"hours":14.0,"minutes":30.0,"seconds":0.0,"nanos":0.0}}}}`
	rec := httptest.NewRecorder()
	h.Fulfill(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CXResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	msgs := resp.FulfillmentResponse.Messages
	require.NotEmpty(t, msgs)
	require.NotNil(t, msgs[0].Text)
	text := strings.Join(msgs[0].Text.Text, "\n")
	assert.Contains(t, text, "Tuesday, 30 September 2025 at 02:30 PM")
	assert.NotContains(t, text, "your selected date and time")
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(&captureFulfiller{}, nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
