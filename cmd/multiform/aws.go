package main

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/invoke"
	"github.com/indigo-web/multiform/store/s3store"
)

func s3Persister(ctx context.Context, bucket string, logger *slog.Logger) (invoke.Persister, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	st := s3store.New(s3.NewFromConfig(cfg), bucket, logger)
	logger.Info("storing forms", slog.String("bucket", bucket))

	return func(ctx context.Context, prefix string, f *form.Form) error {
		return s3store.PutForm(ctx, st, prefix, f)
	}, nil
}
