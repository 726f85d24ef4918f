package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/internal/messaging"
	"github.com/wolfman30/clinic-booking-webhook/internal/notify"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.New("error")
}

func TestBuildRedisClient(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, quietLogger(), true))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, quietLogger(), true)
	require.NotNil(t, client)
	defer client.Close()

	unreachable := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: "127.0.0.1:1"}, quietLogger(), true)
	assert.Nil(t, unreachable)
}

func TestBuildCatalogSource(t *testing.T) {
	ctx := context.Background()

	src, cleanup, err := BuildCatalogSource(ctx, &appconfig.Config{CatalogSource: "embedded"}, aws.Config{})
	require.NoError(t, err)
	cleanup()
	assert.IsType(t, catalog.EmbeddedSource{}, src)

	_, _, err = BuildCatalogSource(ctx, &appconfig.Config{CatalogSource: "file"}, aws.Config{})
	assert.Error(t, err)

	_, _, err = BuildCatalogSource(ctx, &appconfig.Config{CatalogSource: "postgres"}, aws.Config{})
	assert.Error(t, err)

	_, _, err = BuildCatalogSource(ctx, &appconfig.Config{CatalogSource: "s3"}, aws.Config{})
	assert.Error(t, err)

	_, _, err = BuildCatalogSource(ctx, &appconfig.Config{CatalogSource: "ftp"}, aws.Config{})
	assert.Error(t, err)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	doc := `{"hospitals":[{"name":"St Mary","city":"Leeds","postcode":"LS1 1AA"}],
		"doctors":[{"name":"Dr. Ada Lane","specialty":"Neurology","locations":["St Mary"],"fees":{"St Mary":200}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadCatalog(context.Background(), &appconfig.Config{CatalogSource: "file", CatalogPath: path}, aws.Config{}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []string{"Dr. Ada Lane"}, c.DoctorNames())
}

func TestBuildEmailSender(t *testing.T) {
	cases := []struct {
		name     string
		cfg      appconfig.Config
		provider string
	}{
		{"auto prefers sendgrid", appconfig.Config{EmailProvider: "auto", SendGridAPIKey: "SG.x", SESFromEmail: "a@b.c"}, "sendgrid"},
		{"auto falls to smtp", appconfig.Config{EmailProvider: "auto", SMTPHost: "smtp.example.com"}, "smtp"},
		{"auto without credentials", appconfig.Config{EmailProvider: "auto"}, "stub"},
		{"explicit none", appconfig.Config{EmailProvider: "none"}, "stub"},
		{"sendgrid missing key", appconfig.Config{EmailProvider: "sendgrid"}, "stub"},
		{"ses", appconfig.Config{EmailProvider: "ses", SESFromEmail: "bookings@example.com", AWSRegion: "eu-west-2"}, "ses"},
		{"unknown", appconfig.Config{EmailProvider: "pigeon"}, "stub"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			sender, provider := BuildEmailSender(&cfg, aws.Config{Region: "eu-west-2"}, quietLogger())
			require.NotNil(t, sender)
			assert.Equal(t, tc.provider, provider)
			if provider == "stub" {
				assert.IsType(t, &notify.StubEmailSender{}, sender)
			}
		})
	}
}

func TestBuildChatSender(t *testing.T) {
	sender, provider := BuildChatSender(&appconfig.Config{}, quietLogger())
	assert.Equal(t, "stub", provider)
	assert.IsType(t, &messaging.StubChatSender{}, sender)

	sender, provider = BuildChatSender(&appconfig.Config{
		TwilioAccountSID:   "AC123",
		TwilioAuthToken:    "token",
		TwilioWhatsAppFrom: "+14155238886",
	}, quietLogger())
	assert.Equal(t, "twilio", provider)
	assert.IsType(t, &messaging.WhatsAppSender{}, sender)
}

func TestBuildNotificationsModes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inline, err := BuildNotifications(ctx, &appconfig.Config{NotifyMode: "inline"}, aws.Config{}, nil, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, NotifyModeInline, inline.Mode)
	assert.Nil(t, inline.Worker)
	require.NoError(t, inline.Service.SendEmail(ctx, notify.EmailMessage{To: "pat@example.com", Subject: "hi", Body: "hello"}))

	async, err := BuildNotifications(ctx, &appconfig.Config{NotifyMode: "async", NotifyWorkers: 1, NotifyQueueSize: 4}, aws.Config{}, nil, nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, async.Worker)
	require.NoError(t, async.Service.SendChat(ctx, "+447700900123", "hello"))
	cancel()
	async.Wait()

	_, err = BuildNotifications(context.Background(), &appconfig.Config{NotifyMode: "sqs"}, aws.Config{}, nil, nil, quietLogger())
	assert.Error(t, err)

	_, err = BuildNotifications(context.Background(), &appconfig.Config{NotifyMode: "carrier-pigeon"}, aws.Config{}, nil, nil, quietLogger())
	assert.Error(t, err)

	_, err = BuildNotifications(context.Background(), nil, aws.Config{}, nil, nil, quietLogger())
	assert.Error(t, err)
}
