// Package rolegraph maintains a per-role co-occurrence graph of
// concepts and ranks documents by how strongly they touch the graph.
// Nodes are concepts, edges are unordered concept pairs keyed by an
// elegant pairing of the two IDs, and both carry per-document counts
// that drive query scoring.
package rolegraph

import (
	"errors"
	"fmt"
	"math"
)

// MaxPairableID is the largest concept ID the pairing function can
// combine without overflowing uint64.
const MaxPairableID = math.MaxUint32

// ErrIDRange reports a concept ID too large to pair. Thesauri are
// expected to keep IDs within 32 bits; one that does not is
// misconfigured.
var ErrIDRange = errors.New("rolegraph: concept id exceeds pairable range")

// Pair maps an unordered pair of concept IDs to a single edge key
// using the elegant pairing function. The pair is canonicalized before
// pairing, so Pair(a, b) == Pair(b, a).
func Pair(a, b uint64) (uint64, error) {
	if a > MaxPairableID {
		return 0, fmt.Errorf("%w: %d", ErrIDRange, a)
	}
	if b > MaxPairableID {
		return 0, fmt.Errorf("%w: %d", ErrIDRange, b)
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi*hi + hi + lo, nil
}

// Unpair inverts Pair, returning the canonical (smaller, larger) pair
// of concept IDs encoded in an edge key.
func Unpair(z uint64) (uint64, uint64) {
	q := isqrt(z)
	l := z - q*q
	if l < q {
		return l, q
	}
	return l - q, q
}

// isqrt returns floor(sqrt(n)). math.Sqrt alone loses precision for n
// near 2^64, so the float estimate is corrected by integer steps.
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	q := uint64(math.Sqrt(float64(n)))
	if q > math.MaxUint32 {
		q = math.MaxUint32
	}
	for q > 0 && q*q > n {
		q--
	}
	for q < math.MaxUint32 && (q+1)*(q+1) <= n {
		q++
	}
	return q
}
