// Package id generates identifiers for canvases, requests and connections.
//
// Canvas and request ids are prefixed ULIDs ("cnv_01J...", "req_01J..."),
// which sort by creation time and read well in logs. Websocket connection ids
// are random UUIDs since they are never ordered or persisted.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// CanvasID identifies a canvas instance
type CanvasID string

// RequestID identifies an HTTP request or trace span
type RequestID string

// ConnectionID identifies a websocket connection
type ConnectionID string

const (
	CanvasPrefix  = "cnv"
	RequestPrefix = "req"
)

func (id CanvasID) String() string     { return string(id) }
func (id RequestID) String() string    { return string(id) }
func (id ConnectionID) String() string { return string(id) }

// Generator produces monotonic ULIDs from one entropy source
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator; entropy may be deterministic in tests
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: ulid.Monotonic(entropy, 0)}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix creates "prefix_<ulid>"
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate())
}

// NewCanvasID generates a canvas id
func NewCanvasID() CanvasID {
	return CanvasID(Default().WithPrefix(CanvasPrefix))
}

// NewRequestID generates a request id
func NewRequestID() RequestID {
	return RequestID(Default().WithPrefix(RequestPrefix))
}

// NewConnectionID generates a connection id
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// ValidCanvasID reports whether s looks like an id from NewCanvasID
func ValidCanvasID(s string) bool {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix != CanvasPrefix {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}

// Timestamp extracts the creation time of a prefixed or bare ULID
func Timestamp(s string) (time.Time, error) {
	if _, rest, ok := strings.Cut(s, "_"); ok {
		s = rest
	}
	parsed, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
