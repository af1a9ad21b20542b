package store

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints record identifiers.
type IDGenerator interface {
	NewID(now time.Time) string
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func(now time.Time) string

// NewID calls the underlying function.
func (fn IDGeneratorFunc) NewID(now time.Time) string {
	return fn(now)
}

// TimestampIDs produces "<unix seconds><1000..9999>" identifiers. Collisions
// within one second are possible; the stores retry against the collection.
type TimestampIDs struct {
	// Intn returns a value in [0, n). Defaults to math/rand/v2.
	Intn func(n int) int
}

// NewID implements IDGenerator.
func (g TimestampIDs) NewID(now time.Time) string {
	intn := g.Intn
	if intn == nil {
		intn = rand.IntN
	}
	return strconv.FormatInt(now.Unix(), 10) + strconv.Itoa(1000+intn(9000))
}

// UUIDs produces random version 4 UUID strings.
type UUIDs struct{}

// NewID implements IDGenerator.
func (UUIDs) NewID(time.Time) string {
	return uuid.NewString()
}

// IDStrategy maps a configuration name onto a generator. Unknown names fall
// back to TimestampIDs.
func IDStrategy(name string) IDGenerator {
	if name == "uuid" {
		return UUIDs{}
	}
	return TimestampIDs{}
}
