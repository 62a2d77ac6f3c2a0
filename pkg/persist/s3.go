package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Storage.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage stores each key as an object in an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	storage := persist.NewS3Storage(s3.NewFromConfig(cfg), "my-bucket",
//	    persist.WithS3Prefix("prefs/"))
type S3Storage struct {
	client      S3API
	bucket      string
	prefix      string
	contentType string
}

// S3Option configures S3Storage behavior.
type S3Option func(*S3Storage)

// WithS3Prefix sets the object key prefix. Default: "vstore/".
func WithS3Prefix(prefix string) S3Option {
	return func(s *S3Storage) {
		s.prefix = prefix
	}
}

// WithS3ContentType sets the Content-Type of written objects.
// Default: "application/json".
func WithS3ContentType(contentType string) S3Option {
	return func(s *S3Storage) {
		s.contentType = contentType
	}
}

// NewS3Storage creates an S3-backed storage for bucket.
func NewS3Storage(client S3API, bucket string, opts ...S3Option) *S3Storage {
	s := &S3Storage{
		client:      client,
		bucket:      bucket,
		prefix:      "vstore/",
		contentType: "application/json",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *S3Storage) objectKey(key string) string {
	return s.prefix + key
}

// GetItem downloads the object for key.
func (s *S3Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("s3 get %s: %w", s.objectKey(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("s3 read %s: %w", s.objectKey(key), err)
	}
	return string(data), true, nil
}

// SetItem uploads value as the object for key.
func (s *S3Storage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String(s.contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", s.objectKey(key), err)
	}
	return nil
}

// RemoveItem deletes the object for key. Deleting a missing object succeeds.
func (s *S3Storage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", s.objectKey(key), err)
	}
	return nil
}

var _ Storage = (*S3Storage)(nil)
