package domain

import "errors"

var (
	ErrUnauthorized         = errors.New("caller is not the authority")
	ErrHalted               = errors.New("sale is paused")
	ErrInvalidTicketType    = errors.New("invalid ticket type")
	ErrInvalidQuantity      = errors.New("quantity must be greater than 0")
	ErrExceedsPurchaseLimit = errors.New("exceeds max tickets per purchase")
	ErrInsufficientPayment  = errors.New("payment below required total")
	ErrSoldOut              = errors.New("requested quantity exceeds available supply")
	ErrNothingToWithdraw    = errors.New("treasury is empty")
	ErrInvalidIdentity      = errors.New("invalid identity")
	ErrInsufficientBalance  = errors.New("insufficient ticket balance")
	ErrInsufficientFunds    = errors.New("insufficient account funds")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNotInitialized       = errors.New("sale state not initialized")
)
