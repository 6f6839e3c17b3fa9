package domain

import "time"

// PurchaseLine is one (type, quantity) entry of a purchase request.
type PurchaseLine struct {
	Type     TicketType
	Quantity int64
}

// ValidateShape runs the structural checks of a purchase line: type
// recognised, quantity positive and within MaxPerPurchase.
func (l PurchaseLine) ValidateShape() error {
	if !l.Type.Valid() {
		return ErrInvalidTicketType
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if l.Quantity > MaxPerPurchase {
		return ErrExceedsPurchaseLimit
	}
	return nil
}

// Purchase is the receipt of a committed mint or batch mint.
type Purchase struct {
	ID        string
	Buyer     Identity
	Lines     []PurchaseLine
	Paid      Amount
	CreatedAt time.Time
}

// Withdrawal records a treasury payout to the authority.
type Withdrawal struct {
	ID        string
	Recipient Identity
	Amount    Amount
	CreatedAt time.Time
}

// ZipLines pairs types[i] with quantities[i]. Empty or mismatched inputs
// are malformed quantities.
func ZipLines(types []TicketType, quantities []int64) ([]PurchaseLine, error) {
	if len(types) == 0 || len(types) != len(quantities) {
		return nil, ErrInvalidQuantity
	}
	lines := make([]PurchaseLine, len(types))
	for i := range types {
		lines[i] = PurchaseLine{Type: types[i], Quantity: quantities[i]}
	}
	return lines, nil
}
