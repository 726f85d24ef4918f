package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/clinic-booking-webhook/cmd/mainconfig"
	"github.com/wolfman30/clinic-booking-webhook/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
	"github.com/wolfman30/clinic-booking-webhook/internal/webhook"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	// Async workers would not survive a frozen execution environment.
	if cfg.NotifyMode == bootstrap.NotifyModeAsync {
		logger.Warn("async notifications are not supported in lambda; sending inline")
		cfg.NotifyMode = bootstrap.NotifyModeInline
	}

	var awsCfg aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			panic(err)
		}
		awsCfg = loaded
	}

	dir, err := bootstrap.LoadCatalog(ctx, cfg, awsCfg, logger)
	if err != nil {
		panic(err)
	}
	notifications, err := bootstrap.BuildNotifications(ctx, cfg, awsCfg, nil, nil, logger)
	if err != nil {
		panic(err)
	}

	dispatcher := fulfillment.New(
		dir,
		fees.NewCalculator(cfg.RecognizedInsurers),
		notifications.Service,
		logger,
		fulfillment.WithClinicName(cfg.ClinicName),
		fulfillment.WithCountryCode(cfg.PhoneCountryCode),
	)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, dispatcher, logger, evt)
	})
}

func handle(ctx context.Context, fulfiller webhook.Fulfiller, logger *logging.Logger, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return jsonResponse(http.StatusOK, map[string]string{"status": "ok"}), nil
	}
	if path != "/webhook" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}
	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		logger.Warn("invalid lambda body encoding", "error", err)
		return jsonResponse(http.StatusBadRequest, webhook.EncodeReply(reply.Fallback())), nil
	}
	req, err := webhook.DecodeRequestBytes(body)
	if err != nil {
		logger.Warn("rejecting fulfillment callback", "error", err, "request_id", evt.RequestContext.RequestID)
		return jsonResponse(http.StatusBadRequest, webhook.EncodeReply(reply.Fallback())), nil
	}

	out := fulfiller.Handle(ctx, req)
	return jsonResponse(http.StatusOK, webhook.EncodeReply(out)), nil
}

func jsonResponse(status int, payload any) events.APIGatewayV2HTTPResponse {
	raw, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       string(raw),
		Headers:    map[string]string{"content-type": "application/json"},
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
