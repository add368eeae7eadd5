// Package identity generates identifiers and builds or parses the IRI-style references
// used by both schemas.
package identity

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator produces fresh identifiers. Implementations must be safe for concurrent use.
type Generator interface {
	NewID() string
	NewNumericID() int
}

// UUIDGenerator issues random UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// NewNumericID returns a number in [0, 10000), the range FSR exports use for their local ids.
func (UUIDGenerator) NewNumericID() int {
	return rand.IntN(10000) //nolint:gosec // not security sensitive
}

// Sequence is a deterministic Generator: ids are prefix-1, prefix-2, ...
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.Prefix, s.next())
}

func (s *Sequence) NewNumericID() int {
	return s.next()
}

func (s *Sequence) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++

	return s.n
}

// ExtractID returns the last path segment of ref, or ref itself when it has no slash.
func ExtractID(ref string) string {
	if !strings.Contains(ref, "/") {
		return ref
	}

	parts := strings.Split(ref, "/")

	return parts[len(parts)-1]
}

const defaultPriority = "medium"

// Priority resolves a priority reference to a display value. Picklist IRIs cannot be
// resolved offline and map to the default.
func Priority(ref any) string {
	s, ok := ref.(string)
	if !ok || s == "" || strings.Contains(s, "picklists") {
		return defaultPriority
	}

	return s
}
