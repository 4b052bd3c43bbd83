package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetByDeal(ctx context.Context, dealID string) (*domain.CommissionRecord, error)
	ListByAgent(ctx context.Context, agentID string, from, to time.Time) ([]*domain.CommissionRecord, error)
	GetCapUtilization(ctx context.Context, agentID string, feeYear int) (*usecase.CapUtilization, error)
}

// LedgerHandler serves read-only ledger queries.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// GetByDeal returns the commission record for a deal.
func (h *LedgerHandler) GetByDeal(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if dealID == "" {
		writeError(w, http.StatusBadRequest, "missing deal ID", "")
		return
	}

	record, err := h.ledgerUC.GetByDeal(r.Context(), dealID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get commission", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CommissionRecordFromDomain(record))
}

// ListByAgent lists an agent's records within [from, to).
func (h *LedgerHandler) ListByAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "missing agent ID", "")
		return
	}

	now := time.Now().UTC()
	from := parseTimeQuery(r, "from", now.AddDate(-1, 0, 0))
	to := parseTimeQuery(r, "to", now)

	records, err := h.ledgerUC.ListByAgent(r.Context(), agentID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list commissions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CommissionRecordsFromDomain(records))
}

// GetCapUtilization reports cap posture for one agent and fee year.
func (h *LedgerHandler) GetCapUtilization(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "missing agent ID", "")
		return
	}

	feeYear := parseIntQuery(r, "fee_year", time.Now().UTC().Year())

	util, err := h.ledgerUC.GetCapUtilization(r.Context(), agentID, feeYear)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cap utilization", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CapUtilizationFromUseCase(util))
}
