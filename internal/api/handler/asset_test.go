package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hszk-dev/clipstore/internal/domain/model"
)

// mockAssetCache provides a configurable mock for usecase.AssetCache.
type mockAssetCache struct {
	resolveFn func(ctx context.Context, rawURL string) model.Handle

	protectedSets [][]string
}

func (m *mockAssetCache) Resolve(ctx context.Context, rawURL string) model.Handle {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, rawURL)
	}
	return model.Handle{URL: rawURL, Source: model.SourceDirect}
}

func (m *mockAssetCache) SetProtected(urls []string) {
	m.protectedSets = append(m.protectedSets, urls)
}

func TestAssetHandler_Resolve_MissingURL(t *testing.T) {
	h := NewAssetHandler(&mockAssetCache{})

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/resolve", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAssetHandler_Resolve_ServesCachedBytes(t *testing.T) {
	payload := []byte("clip payload")
	cache := &mockAssetCache{
		resolveFn: func(ctx context.Context, rawURL string) model.Handle {
			return model.Handle{
				URL:    rawURL,
				Data:   payload,
				Size:   int64(len(payload)),
				Source: model.SourceCache,
			}
		},
	}
	h := NewAssetHandler(cache)

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/resolve?url=https://b.example/clip.mp4", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("X-Asset-Source"); got != "cache" {
		t.Errorf("X-Asset-Source = %s, want cache", got)
	}
	if rec.Body.String() != string(payload) {
		t.Errorf("body = %q, want %q", rec.Body.String(), payload)
	}
}

func TestAssetHandler_Resolve_RedirectsOnDirectFallback(t *testing.T) {
	canonical := "https://clipstore-media.s3.us-west-000.backblazeb2.com/clip.mp4"
	cache := &mockAssetCache{
		resolveFn: func(ctx context.Context, rawURL string) model.Handle {
			return model.Handle{URL: canonical, Source: model.SourceDirect}
		},
	}
	h := NewAssetHandler(cache)

	req := httptest.NewRequest(http.MethodGet, "/v1/assets/resolve?url="+canonical, nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if got := rec.Header().Get("Location"); got != canonical {
		t.Errorf("Location = %s, want %s", got, canonical)
	}
}

func TestAssetHandler_SetProtected(t *testing.T) {
	cache := &mockAssetCache{}
	h := NewAssetHandler(cache)

	body := `{"urls": ["https://b.example/a.mp4", "https://b.example/b.mp4"]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/cache/protected", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SetProtected(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(cache.protectedSets) != 1 || len(cache.protectedSets[0]) != 2 {
		t.Errorf("protectedSets = %v, want one call with two URLs", cache.protectedSets)
	}
}

func TestAssetHandler_SetProtected_InvalidBody(t *testing.T) {
	cache := &mockAssetCache{}
	h := NewAssetHandler(cache)

	req := httptest.NewRequest(http.MethodPut, "/v1/cache/protected", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.SetProtected(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(cache.protectedSets) != 0 {
		t.Error("SetProtected called for invalid body")
	}
}
