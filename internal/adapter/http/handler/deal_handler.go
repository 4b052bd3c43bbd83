package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
)

// DealService defines the behavior needed by DealHandler.
type DealService interface {
	SubmitClosedDeal(ctx context.Context, input domain.CommissionInput) (*domain.CommissionRecord, error)
	ReverseDeal(ctx context.Context, dealID string) (*domain.CommissionRecord, error)
}

// DealHandler handles deal ingestion requests.
type DealHandler struct {
	commissionUC DealService
}

// NewDealHandler creates a new DealHandler.
func NewDealHandler(commissionUC DealService) *DealHandler {
	return &DealHandler{commissionUC: commissionUC}
}

// Submit accepts a closed deal and returns the computed split.
func (h *DealHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToDomainInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	record, err := h.commissionUC.SubmitClosedDeal(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit deal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommissionRecordFromDomain(record))
}

// Reverse appends the offsetting record for an already-split deal.
func (h *DealHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if dealID == "" {
		writeError(w, http.StatusBadRequest, "missing deal ID", "")
		return
	}

	reversal, err := h.commissionUC.ReverseDeal(r.Context(), dealID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse deal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CommissionRecordFromDomain(reversal))
}
