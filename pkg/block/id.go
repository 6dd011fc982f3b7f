package block

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces block identifiers. Implementations are owned by one
// store; they need not be unique across stores but should make collisions
// unlikely, since the store retries on a clash only a bounded number of times.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a plain function to [IDGenerator].
type IDFunc func() string

// NewID calls f.
func (f IDFunc) NewID() string { return f() }

// UUIDGenerator generates random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Sequence generates prefix-numbered ids ("b1", "b2", ...). It is safe for
// concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix, next: 1}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.prefix + strconv.Itoa(s.next)
	s.next++
	return id
}
