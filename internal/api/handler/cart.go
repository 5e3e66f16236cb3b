package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
	"github.com/hszk-dev/clipstore/internal/usecase"
)

// Request/Response types

type AddCartItemRequest struct {
	UserID  string `json:"user_id"`
	ClipURL string `json:"clip_url"`
}

type CartItemResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	ClipURL string `json:"clip_url"`
	AddedAt string `json:"added_at"`
}

func toCartItemResponse(item *model.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:      item.ID.String(),
		UserID:  item.UserID.String(),
		ClipURL: item.ClipURL,
		AddedAt: item.AddedAt.Format(time.RFC3339),
	}
}

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	svc usecase.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc usecase.CartService) *CartHandler {
	return &CartHandler{svc: svc}
}

// Add handles POST /v1/cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID must be a valid UUID")
		return
	}

	if req.ClipURL == "" {
		Error(w, http.StatusBadRequest, "invalid_clip_url", "Clip URL is required")
		return
	}

	item, err := h.svc.AddItem(r.Context(), userID, req.ClipURL)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toCartItemResponse(item))
}

// Remove handles DELETE /v1/cart/items/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_id", "Cart item ID must be a valid UUID")
		return
	}

	if err := h.svc.RemoveItem(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /v1/cart/items?user_id=...
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_user_id", "Query parameter user_id must be a valid UUID")
		return
	}

	items, err := h.svc.ListItems(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toCartItemResponse(item))
	}
	JSON(w, http.StatusOK, resp)
}

func (h *CartHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrCartItemNotFound):
		Error(w, http.StatusNotFound, "not_found", "Cart item not found")
	case errors.Is(err, repository.ErrDuplicateCartItem):
		Error(w, http.StatusConflict, "duplicate", "Clip is already in the cart")
	case errors.Is(err, model.ErrInvalidCartUserID), errors.Is(err, model.ErrEmptyClipURL):
		Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
