package http

import (
	"context"
	"net/http"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// Administrator is the minimal interface needed for the authority-only
// endpoints. Authorization is the service's job; handlers only pass the
// authenticated caller through.
type Administrator interface {
	RequireAuthority(ctx context.Context, caller domain.Identity) error
	SetMaxSupply(ctx context.Context, caller domain.Identity, t domain.TicketType, maxSupply int64) (domain.Tier, error)
	SetTokenPrice(ctx context.Context, caller domain.Identity, t domain.TicketType, price domain.Amount) (domain.Tier, error)
	Pause(ctx context.Context, caller domain.Identity) error
	Unpause(ctx context.Context, caller domain.Identity) error
	SetURI(ctx context.Context, caller domain.Identity, baseURI string) error
	Withdraw(ctx context.Context, caller domain.Identity) (domain.Withdrawal, error)
	TransferAuthority(ctx context.Context, caller, next domain.Identity) error
}

type maxSupplyRequest struct {
	MaxSupply *int64 `json:"max_supply"`
}

type priceRequest struct {
	Price *int64 `json:"price"`
}

type uriRequest struct {
	BaseURI *string `json:"base_uri"`
}

type authorityRequest struct {
	Authority string `json:"authority"`
}

type adminTierResponse struct {
	TicketType       int    `json:"ticket_type"`
	Name             string `json:"name"`
	UnitPrice        int64  `json:"unit_price"`
	UnitPriceDisplay string `json:"unit_price_display"`
	MaxSupply        int64  `json:"max_supply"`
	Minted           int64  `json:"minted"`
	Available        int64  `json:"available"`
}

func toAdminTierResponse(tier domain.Tier, decimals int32) adminTierResponse {
	return adminTierResponse{
		TicketType:       tier.Type.ID(),
		Name:             tier.Type.String(),
		UnitPrice:        int64(tier.UnitPrice),
		UnitPriceDisplay: tier.UnitPrice.Format(decimals),
		MaxSupply:        tier.MaxSupply,
		Minted:           tier.Minted,
		Available:        tier.Available(),
	}
}

// rejectInput answers a malformed admin request with 400 once the caller has
// passed the authority check.
func rejectInput(w http.ResponseWriter, r *http.Request, svc Administrator, code, message string) {
	if err := svc.RequireAuthority(r.Context(), callerFrom(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeError(w, http.StatusBadRequest, code, message)
}

func HandleSetMaxSupply(svc Administrator, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req maxSupplyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			rejectInput(w, r, svc, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.MaxSupply == nil {
			rejectInput(w, r, svc, codeMissingRequiredField, "max_supply is required")
			return
		}

		tier, err := svc.SetMaxSupply(r.Context(), callerFrom(r.Context()), ticketTypeParam(r), *req.MaxSupply)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAdminTierResponse(tier, decimals))
	}
}

func HandleSetPrice(svc Administrator, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req priceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			rejectInput(w, r, svc, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Price == nil {
			rejectInput(w, r, svc, codeMissingRequiredField, "price is required")
			return
		}

		tier, err := svc.SetTokenPrice(r.Context(), callerFrom(r.Context()), ticketTypeParam(r), domain.Amount(*req.Price))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAdminTierResponse(tier, decimals))
	}
}

// HandleSetPaused serves both pause and unpause; both succeed when the sale
// is already in the requested state.
func HandleSetPaused(svc Administrator, paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerFrom(r.Context())
		var err error
		if paused {
			err = svc.Pause(r.Context(), caller)
		} else {
			err = svc.Unpause(r.Context(), caller)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
	}
}

func HandleSetURI(svc Administrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req uriRequest
		if err := decodeJSON(w, r, &req); err != nil {
			rejectInput(w, r, svc, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BaseURI == nil {
			rejectInput(w, r, svc, codeMissingRequiredField, "base_uri is required")
			return
		}

		if err := svc.SetURI(r.Context(), callerFrom(r.Context()), *req.BaseURI); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"base_uri": *req.BaseURI})
	}
}

func HandleWithdraw(svc Administrator, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withdrawal, err := svc.Withdraw(r.Context(), callerFrom(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toWithdrawalResponse(withdrawal, decimals))
	}
}

func HandleTransferAuthority(svc Administrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authorityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			rejectInput(w, r, svc, codeInvalidRequestBody, "invalid request body")
			return
		}
		// An empty authority is passed through so the caller is checked
		// before the new value.
		next, _ := domain.NewIdentity(req.Authority)

		if err := svc.TransferAuthority(r.Context(), callerFrom(r.Context()), next); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"authority": next.String()})
	}
}
