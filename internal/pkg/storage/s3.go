package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// defaultS3Region is used for S3-compatible endpoints that ignore regions
// but still need one for request signing.
const defaultS3Region = "us-east-1"

// S3Adapter implements Storage using AWS S3 or an S3-compatible server.
type S3Adapter struct {
	client *s3.Client
}

type S3Options struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	SessionToken string
	// UsePathStyle forces path-style addressing, needed by most S3-compatible servers.
	UsePathStyle bool
}

func (o S3Options) loadOptions() []func(*config.LoadOptions) error {
	var lo []func(*config.LoadOptions) error

	switch {
	case o.Region != "":
		lo = append(lo, config.WithRegion(o.Region))
	case o.Endpoint != "":
		lo = append(lo, config.WithRegion(defaultS3Region))
	}
	if o.AccessKey != "" || o.SecretKey != "" {
		lo = append(lo, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, o.SessionToken),
		))
	}
	return lo
}

// NewS3 builds a client from the default AWS chain, overridden by any
// static credentials and endpoint in opts.
func NewS3(ctx context.Context, opts S3Options) (*S3Adapter, error) {
	cfg, err := config.LoadDefaultConfig(ctx, opts.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &S3Adapter{client: client}, nil
}

// PutObject uploads in a single request. A body of unknown size is read into
// memory first because S3 rejects unseekable bodies without a length on
// plain HTTP endpoints.
func (s *S3Adapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	size := opts.Size
	if size <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return ObjectInfo{}, err
		}
		r, size = bytes.NewReader(data), int64(len(data))
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata:      opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        size,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		ContentType: opts.ContentType,
	}, nil
}

// DeleteObject is idempotent; S3 answers 204 for missing keys too.
func (s *S3Adapter) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Adapter) Close() error {
	return nil
}
