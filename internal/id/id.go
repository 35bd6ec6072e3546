// Package id implements the monotonic, time-ordered 128-bit identifiers
// that back every stored record, and the big-endian key codec derived from
// them.
//
// An ID is an oklog/ulid/v2 ULID: the high 48 bits are a millisecond-precision
// timestamp and the low 80 bits are random-with-monotonic-within-millisecond
// increment. A ULID's wire form is already the 16-byte big-endian
// representation the storage layer keys on, so ToKey/FromKey are trivial --
// this is why the pack settled on ulid for sortable identifiers in the first
// place.
package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/eigenlog/eigenlog/internal/domain"
)

// ID is a 128-bit sortable, time-ordered identifier.
type ID = ulid.ULID

// KeySize is the fixed width, in bytes, of every stored key.
const KeySize = 16

// Generator produces monotonically increasing IDs. It is not safe for
// concurrent use -- the subscriber shipper owns exactly one instance, per
// the single-threaded cache design in §4.8.
type Generator struct {
	entropy *ulid.MonotonicEntropy
}

// NewGenerator creates a generator seeded from a cryptographically secure
// random source.
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate mints a new ID for the current wall-clock time. IDs generated by
// the same Generator within one millisecond are strictly increasing; if so
// many are minted in one millisecond that the monotonic increment overflows
// the entropy bits, it returns ErrMonotonicId.
func (g *Generator) Generate() (ID, error) {
	newID, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return ID{}, domain.ErrMonotonicId.WithCause(err)
	}
	return newID, nil
}

// ToKey renders an ID as its 16-byte big-endian key form.
func ToKey(i ID) []byte {
	b := make([]byte, KeySize)
	_ = i.MarshalBinaryTo(b)
	return b
}

// FromKey parses a 16-byte big-endian key back into an ID.
func FromKey(b []byte) (ID, error) {
	if len(b) != KeySize {
		return ID{}, domain.ErrInvalidLengthBytesForId.WithDetails(
			"expected 16 bytes, got " + itoa(len(b)))
	}
	var out ID
	if err := out.UnmarshalBinary(b); err != nil {
		return ID{}, domain.ErrInvalidLengthBytesForId.WithCause(err)
	}
	return out, nil
}

// Floor zeroes the low 10 (random/entropy) bytes of an ID's key, producing
// the smallest key whose millisecond timestamp equals i's.
func Floor(i ID) []byte {
	b := ToKey(i)
	for idx := 6; idx < KeySize; idx++ {
		b[idx] = 0x00
	}
	return b
}

// Ceiling saturates the low 10 (random/entropy) bytes of an ID's key,
// producing the largest key whose millisecond timestamp equals i's.
func Ceiling(i ID) []byte {
	b := ToKey(i)
	for idx := 6; idx < KeySize; idx++ {
		b[idx] = 0xFF
	}
	return b
}

// FromTime builds an ID whose top 48 bits are t's milliseconds-since-epoch
// and whose entropy bits are all zero -- used to turn a timestamp bound into
// a key-range bound alongside Floor/Ceiling.
func FromTime(t time.Time) ID {
	var out ID
	out.SetTime(ulid.Timestamp(t))
	return out
}

// MinKey and MaxKey are the inclusive default bounds used when a query has
// no start/end timestamp.
var (
	MinKey = make([]byte, KeySize)
	MaxKey = func() []byte {
		b := make([]byte, KeySize)
		for i := range b {
			b[i] = 0xFF
		}
		return b
	}()
)

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
