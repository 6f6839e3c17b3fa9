package domain

import "fmt"

// Tier holds the inventory and price record of one ticket type.
type Tier struct {
	Type      TicketType
	UnitPrice Amount
	MaxSupply int64
	Minted    int64
}

// Available reports the remaining mintable quantity. A cap lowered below
// Minted reports zero, never a negative value.
func (t Tier) Available() int64 {
	if t.Minted >= t.MaxSupply {
		return 0
	}
	return t.MaxSupply - t.Minted
}

// Reserve records qty newly minted tickets. Callers validate qty against
// Available first.
func (t *Tier) Reserve(qty int64) {
	t.Minted += qty
}

// DefaultMaxSupply is the cap every ticket type starts with.
const DefaultMaxSupply = 500

// Default prices in major units.
var defaultPrices = [...]string{
	Regular: "0.05",
	Premium: "0.10",
	VIP:     "0.15",
}

// DefaultPrice converts the default price of t into minor units. It fails
// when decimals is too coarse to express the price exactly.
func DefaultPrice(t TicketType, decimals int32) (Amount, error) {
	if !t.Valid() {
		return 0, ErrInvalidTicketType
	}
	price, err := ParseAmount(defaultPrices[t], decimals)
	if err != nil {
		return 0, fmt.Errorf("default %s price: %w", t, err)
	}
	return price, nil
}

// DefaultTiers returns the catalog a fresh sale starts with, priced in
// minor units of the given decimals.
func DefaultTiers(decimals int32) ([]Tier, error) {
	types := TicketTypes()
	tiers := make([]Tier, 0, len(types))
	for _, t := range types {
		price, err := DefaultPrice(t, decimals)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, Tier{Type: t, UnitPrice: price, MaxSupply: DefaultMaxSupply})
	}
	return tiers, nil
}
