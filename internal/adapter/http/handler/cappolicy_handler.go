package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brokerops/commissions/internal/adapter/http/dto"
	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// CapPolicyService defines the behavior needed by CapPolicyHandler.
type CapPolicyService interface {
	Set(ctx context.Context, input usecase.SetPolicyInput) (*domain.CapPolicy, error)
	Get(ctx context.Context, agentID string) (*domain.CapPolicy, error)
}

// CapPolicyHandler manages per-agent cap policies over HTTP.
type CapPolicyHandler struct {
	capPolicyUC CapPolicyService
}

// NewCapPolicyHandler creates a new CapPolicyHandler.
func NewCapPolicyHandler(capPolicyUC CapPolicyService) *CapPolicyHandler {
	return &CapPolicyHandler{capPolicyUC: capPolicyUC}
}

// Set stores the active cap policy for an agent.
func (h *CapPolicyHandler) Set(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "missing agent ID", "")
		return
	}

	var req dto.SetCapPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(agentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	policy, err := h.capPolicyUC.Set(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set cap policy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CapPolicyFromDomain(policy))
}

// Get returns the active cap policy for an agent.
func (h *CapPolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "missing agent ID", "")
		return
	}

	policy, err := h.capPolicyUC.Get(r.Context(), agentID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cap policy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CapPolicyFromDomain(policy))
}
