package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// mockObject implements objectReader over a byte slice.
type mockObject struct {
	io.Reader
	statInfo minio.ObjectInfo
	statErr  error
}

func (m *mockObject) Close() error { return nil }

func (m *mockObject) Stat() (minio.ObjectInfo, error) {
	return m.statInfo, m.statErr
}

// mockMinioClient provides a configurable mock for minioClient.
type mockMinioClient struct {
	getObjectFn func(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (objectReader, error)
}

func (m *mockMinioClient) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (objectReader, error) {
	if m.getObjectFn != nil {
		return m.getObjectFn(ctx, bucket, object, opts)
	}
	return nil, errors.New("not configured")
}

func newTestS3(t *testing.T, mock *mockMinioClient) (*S3, *[]string) {
	t.Helper()

	endpoints := []string{}
	s := NewS3(S3Config{AccessKey: "key", SecretKey: "secret", UseSSL: true})
	s.newClient = func(endpoint string) (minioClient, error) {
		endpoints = append(endpoints, endpoint)
		return mock, nil
	}
	return s, &endpoints
}

func TestS3_Fetch_Success(t *testing.T) {
	payload := []byte("clip payload")
	var gotBucket, gotObject string
	mock := &mockMinioClient{
		getObjectFn: func(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (objectReader, error) {
			gotBucket, gotObject = bucket, object
			return &mockObject{
				Reader:   bytes.NewReader(payload),
				statInfo: minio.ObjectInfo{Size: int64(len(payload))},
			}, nil
		},
	}
	s, endpoints := newTestS3(t, mock)

	data, declaredSize, err := s.Fetch(context.Background(),
		"https://clipstore-media.s3.us-west-000.backblazeb2.com/raw/ocean+waves.mp4")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("data = %q, want %q", data, payload)
	}
	if declaredSize != int64(len(payload)) {
		t.Errorf("declaredSize = %d, want %d", declaredSize, len(payload))
	}
	if gotBucket != "clipstore-media" {
		t.Errorf("bucket = %s, want clipstore-media", gotBucket)
	}
	if gotObject != "raw/ocean waves.mp4" {
		t.Errorf("object = %q, want %q", gotObject, "raw/ocean waves.mp4")
	}
	if len(*endpoints) != 1 || (*endpoints)[0] != "s3.us-west-000.backblazeb2.com" {
		t.Errorf("endpoints = %v, want [s3.us-west-000.backblazeb2.com]", *endpoints)
	}
}

func TestS3_Fetch_NoSuchKey(t *testing.T) {
	mock := &mockMinioClient{
		getObjectFn: func(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (objectReader, error) {
			return &mockObject{
				Reader:  bytes.NewReader(nil),
				statErr: minio.ErrorResponse{Code: "NoSuchKey"},
			}, nil
		},
	}
	s, _ := newTestS3(t, mock)

	_, _, err := s.Fetch(context.Background(),
		"https://clipstore-media.s3.us-west-000.backblazeb2.com/missing.mp4")
	if !errors.Is(err, repository.ErrObjectNotFound) {
		t.Errorf("err = %v, want ErrObjectNotFound", err)
	}
}

func TestS3_Fetch_ClientReusedPerEndpoint(t *testing.T) {
	mock := &mockMinioClient{
		getObjectFn: func(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (objectReader, error) {
			return &mockObject{Reader: bytes.NewReader([]byte("x")), statInfo: minio.ObjectInfo{Size: 1}}, nil
		},
	}
	s, endpoints := newTestS3(t, mock)
	ctx := context.Background()

	urls := []string{
		"https://a.s3.us-west-000.backblazeb2.com/one.mp4",
		"https://b.s3.us-west-000.backblazeb2.com/two.mp4",
		"https://c.s3.eu-central-003.backblazeb2.com/three.mp4",
	}
	for _, u := range urls {
		if _, _, err := s.Fetch(ctx, u); err != nil {
			t.Fatalf("Fetch(%s) failed: %v", u, err)
		}
	}

	if len(*endpoints) != 2 {
		t.Errorf("created %d clients, want 2 (one per endpoint)", len(*endpoints))
	}
}

func TestParseObjectURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantBucket   string
		wantEndpoint string
		wantKey      string
		wantErr      bool
	}{
		{
			name:         "canonical URL",
			url:          "https://clipstore-media.s3.us-west-000.backblazeb2.com/previews/clip.mp4",
			wantBucket:   "clipstore-media",
			wantEndpoint: "s3.us-west-000.backblazeb2.com",
			wantKey:      "previews/clip.mp4",
		},
		{
			name:         "plus decodes to space",
			url:          "https://b.s3.us-east-004.backblazeb2.com/ocean+waves+4k.mp4",
			wantBucket:   "b",
			wantEndpoint: "s3.us-east-004.backblazeb2.com",
			wantKey:      "ocean waves 4k.mp4",
		},
		{
			name:    "not bucket addressed",
			url:     "https://f003.backblazeb2.com/file/bucket/clip.mp4",
			wantErr: true,
		},
		{
			name:    "no object key",
			url:     "https://b.s3.us-west-000.backblazeb2.com/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, endpoint, key, err := parseObjectURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseObjectURL failed: %v", err)
			}
			if bucket != tt.wantBucket {
				t.Errorf("bucket = %s, want %s", bucket, tt.wantBucket)
			}
			if endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %s, want %s", endpoint, tt.wantEndpoint)
			}
			if key != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}
