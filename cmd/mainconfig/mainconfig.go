package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"

	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
)

// LoadEnv reads a local .env file when present. Real environment variables
// win over file entries.
func LoadEnv() {
	_ = godotenv.Load()
}

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	// LocalStack serves every service from one endpoint.
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		loaders = append(loaders, config.WithBaseEndpoint(endpoint))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// NeedsAWS reports whether the configuration touches any AWS service.
func NeedsAWS(cfg *appconfig.Config) bool {
	return cfg.CatalogSource == "s3" ||
		cfg.NotifyMode == "sqs" ||
		cfg.EmailProvider == "ses" ||
		((cfg.EmailProvider == "" || cfg.EmailProvider == "auto") && cfg.SendGridAPIKey == "" && cfg.SESFromEmail != "")
}
