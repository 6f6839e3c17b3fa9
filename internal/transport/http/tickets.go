package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cimillas/ticket-sale/internal/app"
	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/go-chi/chi/v5"
)

// SaleReader is the minimal interface needed for the public read endpoints.
type SaleReader interface {
	SaleProbe
	Status(ctx context.Context) (app.Status, error)
	Tiers(ctx context.Context) ([]app.TierView, error)
	Tier(ctx context.Context, t domain.TicketType) (app.TierView, error)
	URI(ctx context.Context, t domain.TicketType) (string, error)
	BalancesOf(ctx context.Context, holder domain.Identity) ([]app.HolderBalance, error)
	Purchases(ctx context.Context, holder domain.Identity) ([]domain.Purchase, error)
	Withdrawals(ctx context.Context) ([]domain.Withdrawal, error)
}

func HandleStatus(svc SaleReader, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toStatusResponse(status, decimals))
	}
}

func HandleListTickets(svc SaleReader, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := svc.Tiers(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]tierResponse, 0, len(views))
		for _, v := range views {
			resp = append(resp, toTierResponse(v, decimals))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleGetTicket(svc SaleReader, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Tier(r.Context(), ticketTypeParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTierResponse(view, decimals))
	}
}

func HandleTicketURI(svc SaleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := ticketTypeParam(r)
		uri, err := svc.URI(r.Context(), t)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ticket_type": t.ID(), "uri": uri})
	}
}

type balanceResponse struct {
	TicketType int    `json:"ticket_type"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

func HandleHolderBalances(svc SaleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holder := holderParam(r)
		balances, err := svc.BalancesOf(r.Context(), holder)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]balanceResponse, 0, len(balances))
		for _, b := range balances {
			resp = append(resp, balanceResponse{
				TicketType: b.Type.ID(),
				Name:       b.Type.String(),
				Quantity:   b.Quantity,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"holder": holder.String(), "balances": resp})
	}
}

func HandleHolderPurchases(svc SaleReader, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchases, err := svc.Purchases(r.Context(), holderParam(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]purchaseResponse, 0, len(purchases))
		for _, p := range purchases {
			resp = append(resp, toPurchaseResponse(p, decimals))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleListWithdrawals(svc SaleReader, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withdrawals, err := svc.Withdrawals(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := make([]withdrawalResponse, 0, len(withdrawals))
		for _, wd := range withdrawals {
			resp = append(resp, toWithdrawalResponse(wd, decimals))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ticketTypeParam reads the {type} path segment; unrecognised values become
// domain.Unknown and are rejected by the service.
func ticketTypeParam(r *http.Request) domain.TicketType {
	return domain.TicketTypeOrUnknown(chi.URLParam(r, "type"))
}

func holderParam(r *http.Request) domain.Identity {
	raw := chi.URLParam(r, "holder")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	id, _ := domain.NewIdentity(raw)
	return id
}
