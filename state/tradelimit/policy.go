package tradelimit

import (
	"fmt"
	"math"
	"time"

	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/witness"
)

// SignedDates is the part of the signed witness chain the policy reads.
type SignedDates interface {
	EarliestSignedDate(witnessHash library.Hash160) (library.Millis, bool)
}

type Policy struct {
	chain      SignedDates
	currencies payment.Currencies
}

func NewPolicy(chain SignedDates, currencies payment.Currencies) Policy {
	return Policy{chain: chain, currencies: currencies}
}

// SignedAge is the time since the earliest signature of the witness, or -1 when the witness is
// unknown or was never signed.
func (p Policy) SignedAge(lookup witness.Lookup, asOf time.Time) time.Duration {
	found, ok := lookup.(witness.Found)
	if !ok || p.chain == nil {
		return -1
	}
	date, ok := p.chain.EarliestSignedDate(found.Witness.Hash)
	if !ok {
		return -1
	}
	return asOf.Sub(library.FromMillis(date))
}

// ComputeLimit returns the amount in satoshis a peer may trade. Non-fiat currencies are not
// scaled. For fiat the base limit is scaled by the signed age category of the witness, and an
// unknown or unsigned witness gets the lowest category.
func (p Policy) ComputeLimit(baseLimit int64, currencyCode string, lookup witness.Lookup, asOf time.Time) int64 {
	if !p.currencies.IsFiatCurrency(currencyCode) {
		return baseLimit
	}
	category := Category(p.SignedAge(lookup, asOf))
	limit := int64(math.Floor(float64(baseLimit)*category.Factor() + 0.5))
	library.LogCLI(fmt.Sprintf("trade limit for %s is %d (%s)", currencyCode, limit, category), 3)
	return limit
}
