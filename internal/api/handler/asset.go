package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/usecase"
)

// AssetHandler serves clip payloads through the bounded asset cache.
type AssetHandler struct {
	cache usecase.AssetCache
}

// NewAssetHandler creates a new AssetHandler.
func NewAssetHandler(cache usecase.AssetCache) *AssetHandler {
	return &AssetHandler{cache: cache}
}

// Resolve handles GET /v1/assets/resolve?url=...
//
// Cache and network hits stream the payload with X-Asset-Source set; the
// degraded outcome redirects to the canonical URL so the player can stream
// straight from the origin. Resolution itself never fails, so the only
// client error here is a missing parameter.
func (h *AssetHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		Error(w, http.StatusBadRequest, "missing_url", "Query parameter url is required")
		return
	}

	handle := h.cache.Resolve(r.Context(), rawURL)

	switch handle.Source {
	case model.SourceCache, model.SourceNetwork:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(handle.Data)))
		w.Header().Set("X-Asset-Source", string(handle.Source))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(handle.Data)
	case model.SourceDirect:
		w.Header().Set("X-Asset-Source", string(handle.Source))
		http.Redirect(w, r, handle.URL, http.StatusFound)
	default:
		Error(w, http.StatusBadRequest, "invalid_url", "URL did not resolve to an asset")
	}
}

type SetProtectedRequest struct {
	URLs []string `json:"urls"`
}

// SetProtected handles PUT /v1/cache/protected
//
// Replaces the whole eviction-exempt set. The storefront normally drives
// this through cart changes; the endpoint exists for operational overrides.
func (h *AssetHandler) SetProtected(w http.ResponseWriter, r *http.Request) {
	var req SetProtectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	h.cache.SetProtected(req.URLs)
	w.WriteHeader(http.StatusNoContent)
}
