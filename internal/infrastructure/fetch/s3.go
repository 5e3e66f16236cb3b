package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// objectReader abstracts minio.Object for testability.
// *minio.Object satisfies this interface.
type objectReader interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

// minioClient defines the interface for the S3 operations the fetcher needs.
// This abstraction allows for easier unit testing with mocks.
type minioClient interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error)
}

// minioClientAdapter wraps *minio.Client to implement minioClient.
// Necessary because *minio.Client.GetObject returns *minio.Object, but our
// interface returns objectReader for testability.
type minioClientAdapter struct {
	client *minio.Client
}

func (a *minioClientAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
	return a.client.GetObject(ctx, bucketName, objectName, opts)
}

// S3Config holds configuration for the S3 origin fetcher.
type S3Config struct {
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3 fetches clip payloads with an S3-compatible client instead of plain
// HTTPS. Used when the bucket is private and the edge service holds
// application-key credentials. Canonical URLs embed bucket and region in
// the hostname, so one client is kept per derived endpoint.
type S3 struct {
	cfg S3Config

	mu      sync.Mutex
	clients map[string]minioClient

	// newClient is swappable for tests.
	newClient func(endpoint string) (minioClient, error)
}

// Compile-time verification that S3 implements repository.Origin.
var _ repository.Origin = (*S3)(nil)

// NewS3 creates an S3 origin fetcher.
func NewS3(cfg S3Config) *S3 {
	s := &S3{
		cfg:     cfg,
		clients: make(map[string]minioClient),
	}
	s.newClient = func(endpoint string) (minioClient, error) {
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return &minioClientAdapter{client: client}, nil
	}
	return s
}

// Fetch retrieves the object behind a bucket-addressed canonical URL.
func (s *S3) Fetch(ctx context.Context, rawURL string) ([]byte, int64, error) {
	bucket, endpoint, objectKey, err := parseObjectURL(rawURL)
	if err != nil {
		return nil, 0, err
	}

	client, err := s.clientFor(endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("create s3 client for %s: %w", endpoint, err)
	}

	obj, err := client.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	// GetObject returns a lazy reader; Stat forces the round trip and
	// yields the declared size.
	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, repository.ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("stat object: %w", err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, 0, fmt.Errorf("read object: %w", err)
	}

	return data, info.Size, nil
}

func (s *S3) clientFor(endpoint string) (minioClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.clients[endpoint]; ok {
		return client, nil
	}
	client, err := s.newClient(endpoint)
	if err != nil {
		return nil, err
	}
	s.clients[endpoint] = client
	return client, nil
}

// parseObjectURL splits a canonical bucket-addressed URL
// (https://<bucket>.s3.<region>.<domain>/<key>) into bucket, endpoint and
// decoded object key.
func parseObjectURL(rawURL string) (bucket, endpoint, objectKey string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", fmt.Errorf("parse object URL: %w", err)
	}

	host := u.Host
	idx := strings.Index(host, ".s3.")
	if idx <= 0 {
		return "", "", "", fmt.Errorf("not a bucket-addressed URL: %s", rawURL)
	}
	bucket = host[:idx]
	endpoint = host[idx+1:]

	objectKey = decodeObjectKey(strings.TrimPrefix(u.EscapedPath(), "/"))
	if objectKey == "" {
		return "", "", "", fmt.Errorf("object URL has no key: %s", rawURL)
	}
	return bucket, endpoint, objectKey, nil
}

// decodeObjectKey undoes the canonical path encoding: "+" back to space,
// percent escapes back to bytes, per segment. The S3 API wants the real
// object name, not its URL rendering.
func decodeObjectKey(escapedPath string) string {
	segments := strings.Split(escapedPath, "/")
	for i, seg := range segments {
		if decoded, err := url.QueryUnescape(seg); err == nil {
			segments[i] = decoded
		}
	}
	return strings.Join(segments, "/")
}
