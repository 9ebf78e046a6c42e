// Package id generates sortable identifiers for log correlation.
//
// Every forwarded post and every status-stream subscriber gets a prefixed
// ULID, so log lines for one unit of work can be grepped together and sort
// by time without a separate timestamp.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ForwardID identifies one post travelling through the bridge.
type ForwardID string

// SubscriberID identifies one event stream connection.
type SubscriberID string

// RunID identifies one process lifetime.
type RunID string

// RequestID identifies one status server request.
type RequestID string

const (
	ForwardPrefix    = "fwd"
	SubscriberPrefix = "sub"
	RunPrefix        = "run"
	RequestPrefix    = "req"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand, made monotonic so
// IDs minted in the same millisecond still sort in creation order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewForwardID generates a new forward ID.
func NewForwardID() ForwardID {
	return ForwardID(Default().GenerateWithPrefix(ForwardPrefix))
}

// NewSubscriberID generates a new subscriber ID.
func NewSubscriberID() SubscriberID {
	return SubscriberID(Default().GenerateWithPrefix(SubscriberPrefix))
}

// NewRunID generates a new run ID.
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(RunPrefix))
}

// NewRequestID generates a new request ID.
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id ForwardID) String() string    { return string(id) }
func (id SubscriberID) String() string { return string(id) }
func (id RunID) String() string        { return string(id) }
func (id RequestID) String() string    { return string(id) }

// Timestamp extracts the creation time from a prefixed or bare ID.
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
