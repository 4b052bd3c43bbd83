package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/brokerops/commissions/internal/domain"
	"github.com/brokerops/commissions/internal/usecase"
)

// Client implements usecase.PaymentGateway over the collaborator's HTTP
// API. The error mapping is what the settlement orchestrator keys on:
// a connection refusal means the request never arrived, while a timeout
// after the request may have been sent means the outcome is unknown.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new payment client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transferRequest struct {
	Destination      string `json:"destination"`
	AmountCents      int64  `json:"amount_cents"`
	Currency         string `json:"currency"`
	IdempotencyToken string `json:"idempotency_token"`
}

type transferResponse struct {
	Status            string `json:"status"`
	TransferReference string `json:"transfer_reference"`
}

// Transfer submits a transfer. Repeating the call with the same
// idempotency token is safe on the collaborator's side.
func (c *Client) Transfer(ctx context.Context, destination string, amount domain.Money, idempotencyToken string) (*usecase.TransferResult, error) {
	body, err := json.Marshal(transferRequest{
		Destination:      destination,
		AmountCents:      amount.Cents,
		Currency:         amount.Currency,
		IdempotencyToken: idempotencyToken,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var tr transferResponse
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			// The transfer may have been applied even though the
			// response was unreadable.
			return nil, fmt.Errorf("%w: %v", domain.ErrAmbiguousOutcome, err)
		}
		return &usecase.TransferResult{
			Status:            usecase.TransferStatus(tr.Status),
			TransferReference: tr.TransferReference,
		}, nil

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &usecase.TransferResult{Status: usecase.TransferRejected}, nil

	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: collaborator returned %d", domain.ErrAmbiguousOutcome, resp.StatusCode)

	default:
		return nil, fmt.Errorf("transfer request rejected with status %d", resp.StatusCode)
	}
}

type lookupResponse struct {
	Status string `json:"status"`
}

// Lookup asks the collaborator for the outcome of a previously
// submitted token. An unrecognized token reads as unknown.
func (c *Client) Lookup(ctx context.Context, idempotencyToken string) (usecase.LookupStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transfers/"+idempotencyToken, nil)
	if err != nil {
		return usecase.LookupUnknown, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usecase.LookupUnknown, mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return usecase.LookupUnknown, nil
	}
	if resp.StatusCode != http.StatusOK {
		return usecase.LookupUnknown, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var lr lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return usecase.LookupUnknown, err
	}

	switch usecase.LookupStatus(lr.Status) {
	case usecase.LookupPaid:
		return usecase.LookupPaid, nil
	case usecase.LookupFailed:
		return usecase.LookupFailed, nil
	default:
		return usecase.LookupUnknown, nil
	}
}

// mapTransportError classifies a transport failure. Refused connections
// never carried the request; anything after that point is ambiguous.
func mapTransportError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrAmbiguousOutcome, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrAmbiguousOutcome, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrAmbiguousOutcome, err)
}
