package domain

import "strings"

// Identity is an opaque caller or holder identity compared by equality.
type Identity string

// NewIdentity trims s and rejects empty identities.
func NewIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidIdentity
	}
	return Identity(s), nil
}

func (i Identity) String() string { return string(i) }

func (i Identity) IsZero() bool { return i == "" }
