package server

import "github.com/google/uuid"

// TokenGenerator produces session tokens. Implemented by
// UUIDv7Generator in production and testutil.FixedTokenGenerator in
// tests.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-sortable UUIDv7 session tokens, so
// sorting journal sessions by token approximates attach order.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7 string. Panics only if the
// system entropy source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
