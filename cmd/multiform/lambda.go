package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/invoke"
)

type LambdaCmd struct {
	Bucket string `help:"S3 bucket to store decoded forms in." env:"MULTIFORM_BUCKET"`
}

func (c *LambdaCmd) Run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	opts := []invoke.Option{invoke.WithLogger(logger)}
	if len(c.Bucket) > 0 {
		persist, err := s3Persister(ctx, c.Bucket, logger)
		if err != nil {
			return err
		}

		opts = append(opts, invoke.WithPersister(persist))
	}

	h := invoke.New(cfg, opts...)
	logger.Info("starting lambda handler")
	lambda.StartWithOptions(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return handleProxy(ctx, h, logger, req)
	}, lambda.WithContext(ctx))

	return nil
}

func handleProxy(
	ctx context.Context, h *invoke.Handler, logger *slog.Logger, req events.APIGatewayProxyRequest,
) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if len(id) == 0 {
		id = req.RequestContext.RequestID
	}

	resp, err := h.Handle(ctx, invoke.Request{
		Body:    req.Body,
		Base64:  req.IsBase64Encoded,
		Headers: req.Headers,
		Method:  req.HTTPMethod,
		ID:      id,
	})
	if err != nil {
		logger.Warn("form rejected",
			slog.String("request_id", req.RequestContext.RequestID),
			slog.String("error", err.Error()))
	}

	body, err := resp.JSON()
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": mime.JSON},
		Body:       string(body),
	}, nil
}
