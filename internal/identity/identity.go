// internal/identity/identity.go
package identity

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique entity identifiers. Every value returned is
// unique for the lifetime of the process and safe to use as a map key.
type Generator interface {
	NextID() string
}

// UUIDGenerator backs NextID with random UUIDs. Unlike a wall-clock
// timestamp, two entities created in the same tick never collide.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// Sequence is a deterministic counter-based generator for tests.
type Sequence struct {
	prefix  string
	counter uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NextID() string {
	n := atomic.AddUint64(&s.counter, 1)
	return fmt.Sprintf("%s-%d", s.prefix, n)
}
