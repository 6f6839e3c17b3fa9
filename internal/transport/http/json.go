package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cimillas/ticket-sale/internal/domain"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads exactly one JSON object from the body, rejecting unknown
// fields. An empty body is accepted and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ticketTypeField accepts a ticket type as a JSON number or string. Missing
// values and values that name no ticket type resolve to domain.Unknown so the
// service reports them in its own validation order.
type ticketTypeField struct {
	t   domain.TicketType
	set bool
}

func (f *ticketTypeField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		raw = s
	}
	f.t = domain.TicketTypeOrUnknown(raw)
	f.set = true
	return nil
}

func (f ticketTypeField) value() domain.TicketType {
	if !f.set {
		return domain.Unknown
	}
	return f.t
}

func ticketTypes(fields []ticketTypeField) []domain.TicketType {
	out := make([]domain.TicketType, len(fields))
	for i, f := range fields {
		out[i] = f.value()
	}
	return out
}
