package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator hands out a predetermined sequence of session
// tokens. Server tests use it in place of the UUIDv7 generator so logs
// and journal rows carry known session names.
//
// Generate panics once the sequence is exhausted: a test that opens
// more sessions than it declared is broken, and failing fast beats
// silently reusing tokens.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator returning the given tokens
// in order.
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic(fmt.Sprintf("FixedTokenGenerator exhausted after %d tokens", len(g.tokens)))
	}
	tok := g.tokens[g.idx]
	g.idx++
	return tok
}
