package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
)

// PayoutService defines the behavior needed by PayoutHandler.
type PayoutService interface {
	Release(ctx context.Context, id string) (*domain.PayoutLineItem, error)
	Get(ctx context.Context, id string) (*domain.PayoutLineItem, error)
	ListReady(ctx context.Context, limit int) ([]*domain.PayoutLineItem, error)
	ListByState(ctx context.Context, state domain.LineItemState, limit int) ([]*domain.PayoutLineItem, error)
}

// PayoutHandler operates the payout queue over HTTP.
type PayoutHandler struct {
	payoutUC PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutUC PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutUC: payoutUC}
}

// ListReady lists items currently eligible for settlement.
func (h *PayoutHandler) ListReady(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 100)

	items, err := h.payoutUC.ListReady(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payouts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutLineItemsFromDomain(items))
}

// List lists items in an arbitrary state.
func (h *PayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	state := domain.LineItemState(r.URL.Query().Get("state"))
	if state == "" {
		state = domain.LineItemPending
	}
	limit := parseIntQuery(r, "limit", 100)

	items, err := h.payoutUC.ListByState(r.Context(), state, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payouts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutLineItemsFromDomain(items))
}

// Get retrieves a line item by ID.
func (h *PayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing line item ID", "")
		return
	}

	item, err := h.payoutUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payout", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutLineItemFromDomain(item))
}

// Release moves a pending or failed item into Ready.
func (h *PayoutHandler) Release(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing line item ID", "")
		return
	}

	item, err := h.payoutUC.Release(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to release payout", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutLineItemFromDomain(item))
}
