// Package s3store stores decoded forms in an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/store"
	"golang.org/x/sync/errgroup"
)

// uploads is how many files of a single form are uploaded at once.
const uploads = 8

// Client is the subset of *s3.Client the store uses.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements store.Store over a bucket.
type Store struct {
	client Client
	bucket string
	logger *slog.Logger
}

func New(client Client, bucket string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

func (s *Store) Put(ctx context.Context, key string, value []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(value),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(value))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}

	s.logger.Debug("object stored",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int("size", len(value)))

	return nil
}

// PutForm stores the form the same way store.Persist does, but uploads the files
// concurrently. The first failure cancels the rest of uploads.
func PutForm(ctx context.Context, s *Store, prefix string, f *form.Form) error {
	document, err := store.FieldsDocument(f)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploads)

	g.Go(func() error {
		return s.Put(ctx, store.FieldsKey(prefix), document, mime.JSON)
	})

	for _, file := range f.Files {
		g.Go(func() error {
			return store.PutFile(ctx, s, prefix, file)
		})
	}

	return g.Wait()
}
