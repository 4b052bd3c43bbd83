package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	RunBatch(ctx context.Context) (*usecase.BatchSummary, error)
	GetBatch(ctx context.Context, id string) (*domain.PayoutBatch, error)
}

// SettlementHandler triggers settlement runs and reports on batches.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Run claims every Ready item and settles it against the collaborator.
func (h *SettlementHandler) Run(w http.ResponseWriter, r *http.Request) {
	summary, err := h.settlementUC.RunBatch(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "settlement run failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchSummaryFromUseCase(summary))
}

// GetBatch retrieves a batch by ID.
func (h *SettlementHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	batch, err := h.settlementUC.GetBatch(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get batch", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchFromDomain(batch))
}
