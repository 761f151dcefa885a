// Package s3store implements objectstore.Store on top of one S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"pathsummarizer/internal/objectstore"
)

const contentType = "application/json"

// API is the subset of *s3.Client the store needs.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	api    API
	bucket string
	log    *slog.Logger
}

func New(api API, bucket string, log *slog.Logger) *Store {
	return &Store{api: api, bucket: bucket, log: log}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, objectstore.ErrNotFound
		}

		return nil, fmt.Errorf("get object (bucket = %s, key = %s): %w", s.bucket, key, err)
	}
	defer func() {
		if err = out.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close object body",
				"error", err,
				"bucket", s.bucket,
				"key", key)
		}
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object (bucket = %s, key = %s): %w", s.bucket, key, err)
	}

	return data, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(value),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object (bucket = %s, key = %s): %w", s.bucket, key, err)
	}

	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}

var _ objectstore.Store = (*Store)(nil)
