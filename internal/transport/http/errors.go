package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cimillas/ticket-sale/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeUnauthenticated      = "unauthenticated"
	codeUnauthorized         = "unauthorized"
	codeHalted               = "halted"
	codeInvalidTicketType    = "invalid_ticket_type"
	codeInvalidQuantity      = "invalid_quantity"
	codeExceedsPurchaseLimit = "exceeds_purchase_limit"
	codeInsufficientPayment  = "insufficient_payment"
	codeSoldOut              = "sold_out"
	codeNothingToWithdraw    = "nothing_to_withdraw"
	codeInvalidIdentity      = "invalid_identity"
	codeInsufficientBalance  = "insufficient_balance"
	codeInsufficientFunds    = "insufficient_funds"
	codeInvalidAmount        = "invalid_amount"
	codeNotInitialized       = "not_initialized"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUnauthorized, http.StatusForbidden, codeUnauthorized},
	{domain.ErrHalted, http.StatusConflict, codeHalted},
	{domain.ErrInvalidTicketType, http.StatusBadRequest, codeInvalidTicketType},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidQuantity},
	{domain.ErrExceedsPurchaseLimit, http.StatusBadRequest, codeExceedsPurchaseLimit},
	{domain.ErrInsufficientPayment, http.StatusPaymentRequired, codeInsufficientPayment},
	{domain.ErrSoldOut, http.StatusConflict, codeSoldOut},
	{domain.ErrNothingToWithdraw, http.StatusConflict, codeNothingToWithdraw},
	{domain.ErrInvalidIdentity, http.StatusBadRequest, codeInvalidIdentity},
	{domain.ErrInsufficientBalance, http.StatusConflict, codeInsufficientBalance},
	{domain.ErrInsufficientFunds, http.StatusPaymentRequired, codeInsufficientFunds},
	{domain.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{domain.ErrNotInitialized, http.StatusServiceUnavailable, codeNotInitialized},
}

// writeServiceError maps a service error onto its status and code. Anything
// unrecognised is logged and reported as an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, m.err.Error())
			return
		}
	}
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
