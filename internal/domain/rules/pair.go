package rules

import (
	"bytes"

	"github.com/google/uuid"
)

// OrderPair returns the two user ids in canonical order (byte-wise smaller
// first). Match rows always store the pair in this order, which is what makes
// the unordered-pair uniqueness constraint enforceable.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// PairKey builds a stable string key for the unordered pair, used for
// per-pair advisory locking during match creation.
func PairKey(a, b uuid.UUID) string {
	first, second := OrderPair(a, b)
	return first.String() + ":" + second.String()
}
