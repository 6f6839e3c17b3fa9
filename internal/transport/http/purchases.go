package http

import (
	"context"
	"net/http"

	"github.com/cimillas/ticket-sale/internal/app"
	"github.com/cimillas/ticket-sale/internal/domain"
)

// Purchaser is the minimal interface needed for the purchase and transfer
// endpoints.
type Purchaser interface {
	Mint(ctx context.Context, in app.MintInput) (domain.Purchase, error)
	MintBatch(ctx context.Context, in app.MintBatchInput) (domain.Purchase, error)
	Transfer(ctx context.Context, in app.TransferInput) error
}

type mintRequest struct {
	TicketType ticketTypeField `json:"ticket_type"`
	Quantity   int64           `json:"quantity"`
	Paid       int64           `json:"paid"`
}

type mintBatchRequest struct {
	TicketTypes []ticketTypeField `json:"ticket_types"`
	Quantities  []int64           `json:"quantities"`
	Paid        int64             `json:"paid"`
}

type transferRequest struct {
	To         string          `json:"to"`
	TicketType ticketTypeField `json:"ticket_type"`
	Quantity   int64           `json:"quantity"`
}

type transferResponse struct {
	From       string `json:"from"`
	To         string `json:"to"`
	TicketType int    `json:"ticket_type"`
	Quantity   int64  `json:"quantity"`
}

// HandleMint returns an HTTP handler that buys tickets of one type for the
// authenticated caller. paid is in minor units.
func HandleMint(svc Purchaser, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		purchase, err := svc.Mint(r.Context(), app.MintInput{
			Caller:   callerFrom(r.Context()),
			Type:     req.TicketType.value(),
			Quantity: req.Quantity,
			Paid:     domain.Amount(req.Paid),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPurchaseResponse(purchase, decimals))
	}
}

func HandleMintBatch(svc Purchaser, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintBatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		purchase, err := svc.MintBatch(r.Context(), app.MintBatchInput{
			Caller:     callerFrom(r.Context()),
			Types:      ticketTypes(req.TicketTypes),
			Quantities: req.Quantities,
			Paid:       domain.Amount(req.Paid),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPurchaseResponse(purchase, decimals))
	}
}

func HandleTransfer(svc Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		to, err := domain.NewIdentity(req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "to is required")
			return
		}

		in := app.TransferInput{
			From:     callerFrom(r.Context()),
			To:       to,
			Type:     req.TicketType.value(),
			Quantity: req.Quantity,
		}
		if err := svc.Transfer(r.Context(), in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transferResponse{
			From:       in.From.String(),
			To:         in.To.String(),
			TicketType: in.Type.ID(),
			Quantity:   in.Quantity,
		})
	}
}
