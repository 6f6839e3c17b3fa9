package http

import (
	"context"
	"net/http"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// AccountManager is the minimal interface needed for the account endpoints.
type AccountManager interface {
	Deposit(ctx context.Context, holder domain.Identity, amount domain.Amount) (domain.Amount, error)
	Balance(ctx context.Context, holder domain.Identity) (domain.Amount, error)
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

func HandleMyAccount(svc AccountManager, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerFrom(r.Context())
		balance, err := svc.Balance(r.Context(), caller)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(caller, balance, decimals))
	}
}

// HandleDeposit credits the caller's own account. It is only routed when the
// faucet is enabled.
func HandleDeposit(svc AccountManager, decimals int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req depositRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		caller := callerFrom(r.Context())
		balance, err := svc.Deposit(r.Context(), caller, domain.Amount(req.Amount))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(caller, balance, decimals))
	}
}
