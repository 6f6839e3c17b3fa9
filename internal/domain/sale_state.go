package domain

import (
	"strconv"
	"strings"
)

// SaleState is the singleton record behind access control, the pause gate,
// the metadata base and the treasury.
type SaleState struct {
	Authority Identity
	Paused    bool
	BaseURI   string
	Treasury  Amount
}

// RequireAuthority fails with ErrUnauthorized unless caller is the authority.
func (s SaleState) RequireAuthority(caller Identity) error {
	if caller.IsZero() || caller != s.Authority {
		return ErrUnauthorized
	}
	return nil
}

// RequireRunning fails with ErrHalted while the sale is paused.
func (s SaleState) RequireRunning() error {
	if s.Paused {
		return ErrHalted
	}
	return nil
}

// URI derives the metadata locator of a ticket type.
func (s SaleState) URI(t TicketType) (string, error) {
	if !t.Valid() {
		return "", ErrInvalidTicketType
	}
	return TicketURI(s.BaseURI, t), nil
}

// TicketURI joins base and the type id as "<base>/<id>.json".
func TicketURI(base string, t TicketType) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(t.ID()))
	b.WriteString(".json")
	return b.String()
}
