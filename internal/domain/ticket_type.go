package domain

import (
	"math"
	"strconv"
	"strings"
)

// TicketType identifies a sale tier. The set is closed: only the constants
// below are valid.
type TicketType uint8

const (
	Regular TicketType = iota
	Premium
	VIP
)

// Unknown stands in for unrecognised input so that services, not parsers,
// decide when the invalid type is reported.
const Unknown TicketType = math.MaxUint8

// MaxPerPurchase caps the quantity of a single purchase line.
const MaxPerPurchase = 10

var ticketTypeNames = [...]string{
	Regular: "regular",
	Premium: "premium",
	VIP:     "vip",
}

// TicketTypes returns every valid ticket type in id order.
func TicketTypes() []TicketType {
	return []TicketType{Regular, Premium, VIP}
}

func (t TicketType) Valid() bool {
	switch t {
	case Regular, Premium, VIP:
		return true
	default:
		return false
	}
}

// ID returns the numeric identifier used in resource locators.
func (t TicketType) ID() int {
	return int(t)
}

func (t TicketType) String() string {
	if !t.Valid() {
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
	return ticketTypeNames[t]
}

// TicketTypeFromID converts an untrusted numeric id into a TicketType.
func TicketTypeFromID(id int64) (TicketType, error) {
	if id < 0 || id > int64(VIP) {
		return 0, ErrInvalidTicketType
	}
	return TicketType(id), nil
}

// TicketTypeOrUnknown parses s and maps any failure to Unknown.
func TicketTypeOrUnknown(s string) TicketType {
	t, err := ParseTicketType(s)
	if err != nil {
		return Unknown
	}
	return t
}

// ParseTicketType accepts a numeric id ("2") or a name ("vip").
func ParseTicketType(s string) (TicketType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidTicketType
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TicketTypeFromID(id)
	}
	for i, name := range ticketTypeNames {
		if name == s {
			return TicketType(i), nil
		}
	}
	return 0, ErrInvalidTicketType
}
