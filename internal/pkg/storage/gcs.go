package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// googleapiMinChunk is the writer's default chunk size. Smaller objects of
// known size go up in one request instead of a resumable session.
const googleapiMinChunk = 16 << 20

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
}

// GCSOptions configures GCS client initialization. With no credentials the
// client falls back to Application Default Credentials.
type GCSOptions struct {
	// CredentialsJSON is a service account key.
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint, e.g. for fake-gcs-server.
	Endpoint string
	// WithoutAuth disables authentication, for emulators only.
	WithoutAuth bool
}

// NewGCS constructs a GCS adapter.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	clientOpts := []option.ClientOption{}
	if opts.WithoutAuth {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	if len(opts.CredentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, gcs.ScopeReadWrite)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	client, err := gcs.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &GCSAdapter{client: client}, nil
}

// PutObject stores data in GCS.
func (g *GCSAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = opts.ContentType
	writer.CacheControl = opts.CacheControl
	if opts.Size > 0 && opts.Size < googleapiMinChunk {
		writer.ChunkSize = 0
	}
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	if _, err := io.Copy(writer, r); err != nil {
		return ObjectInfo{}, errors.Join(err, writer.Close())
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: bucket, Key: key, Size: opts.Size, ContentType: opts.ContentType}
	if attrs := writer.Attrs(); attrs != nil {
		info.Size = attrs.Size
		info.ETag = attrs.Etag
	}
	return info, nil
}

// DeleteObject removes an object from GCS.
func (g *GCSAdapter) DeleteObject(ctx context.Context, bucket, key string) error {
	err := g.client.Bucket(bucket).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Close releases the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}
