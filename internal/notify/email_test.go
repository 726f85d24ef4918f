package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "bookings@example.com"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_FromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "bookings@example.com"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, DefaultFromName, sender.fromName)

	sender = NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "bookings@example.com", FromName: "Nuffield Health"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Nuffield Health", sender.fromName)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Subject: "Test", Body: "Body"})
	assert.True(t, errors.Is(err, ErrMissingCredentials))
}

type fakeSendGrid struct {
	sent   *mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = m
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: `{"errors":[{"message":"bad"}]}`}, nil
}

func TestSendGridSender_SendBuildsMultipartMail(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSenderWithClient(client, SendGridConfig{FromEmail: "bookings@example.com", FromName: "Nuffield Health"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		ToName:  "Jane Doe",
		Subject: "Confirmed",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)

	m := client.sent
	require.NotNil(t, m)
	assert.Equal(t, "Nuffield Health", m.From.Name)
	assert.Equal(t, "bookings@example.com", m.From.Address)
	assert.Equal(t, "Confirmed", m.Subject)
	require.Len(t, m.Personalizations, 1)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "patient@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
	assert.Equal(t, []string{BookingCategory}, m.Categories)
}

func TestSendGridSender_SendTextOnly(t *testing.T) {
	client := &fakeSendGrid{status: 202}
	sender := newSendGridSenderWithClient(client, SendGridConfig{FromEmail: "bookings@example.com"}, nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Subject: "s", Body: "plain"}))
	require.Len(t, client.sent.Content, 1)
	assert.Equal(t, DefaultFromName, client.sent.From.Name)
}

func TestSendGridSender_SendRejected(t *testing.T) {
	sender := newSendGridSenderWithClient(&fakeSendGrid{status: 400}, SendGridConfig{FromEmail: "bookings@example.com"}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, ErrRejected)

	sender = newSendGridSenderWithClient(&fakeSendGrid{err: errors.New("dial tcp: timeout")}, SendGridConfig{}, nil)
	err = sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestStubEmailSender_Send(t *testing.T) {
	err := NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "patient@example.com"})
	assert.NoError(t, err)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	sender := newSESSenderWithClient(client, SESConfig{FromEmail: "bookings@example.com"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "✅ Consultation Confirmed",
		Body:    "Booking Confirmed!",
		HTML:    "<p>Booking Confirmed!</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, `"Clinic Bookings" <bookings@example.com>`, aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"<patient@example.com>"}, client.input.Destination.ToAddresses)
	require.Len(t, client.input.EmailTags, 1)
	assert.Equal(t, BookingCategory, aws.ToString(client.input.EmailTags[0].Value))
	assert.Equal(t, "Booking Confirmed!", aws.ToString(client.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>Booking Confirmed!</p>", aws.ToString(client.input.Content.Simple.Body.Html.Data))
}

func TestSESSender_SendError(t *testing.T) {
	sender := newSESSenderWithClient(&fakeSES{err: errors.New("throttled")}, SESConfig{FromEmail: "a@b.c"}, nil)
	err := sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{}, nil))
}

func TestSMTPSender(t *testing.T) {
	assert.Nil(t, NewSMTPSender(SMTPConfig{}, nil))

	sender := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Username: "bookings@example.com",
		Password: "secret",
		FromName: "Nuffield Health",
	}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "smtp.example.com:587", sender.addr)

	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "patient@example.com",
		Subject: "✅ Consultation Confirmed",
		Body:    "Booking Confirmed!",
		HTML:    "<p>Booking Confirmed!</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bookings@example.com", gotFrom)
	assert.Equal(t, []string{"patient@example.com"}, gotTo)
	assert.Contains(t, gotMsg, `From: "Nuffield Health" <bookings@example.com>`)
	assert.Contains(t, gotMsg, "Subject: =?utf-8?q?")
	assert.Contains(t, gotMsg, "multipart/alternative")
	assert.Contains(t, gotMsg, "text/plain; charset=UTF-8")
	assert.Contains(t, gotMsg, "text/html; charset=UTF-8")
	assert.True(t, strings.Contains(gotMsg, "Booking Confirmed!"))
}

func TestSMTPSender_Failure(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "bookings@example.com"}, nil)
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	err := sender.Send(context.Background(), EmailMessage{To: "patient@example.com", Body: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
