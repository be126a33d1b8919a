package witness

import (
	"time"

	"agewitness/engine/library"
)

// Witness proves that the account behind Hash existed at Date. Once stored it never changes.
type Witness struct {
	Hash library.Hash160 `json:"hash"`
	Date library.Millis  `json:"date"`
}

func (w Witness) CreatedAt() time.Time {
	return library.FromMillis(w.Date)
}

// Lookup is the answer of the registry for a hash: Found or Unknown. Unknown means zero trust,
// not an error.
type Lookup interface {
	lookup()
}

type Found struct {
	Witness Witness
}

type Unknown struct {
	Hash library.Hash160
}

func (Found) lookup()   {}
func (Unknown) lookup() {}

// Publisher hands records to the replication layer.
type Publisher interface {
	PublishWitness(w Witness, forceRebroadcast bool) error
}

type Mapped map[library.Hash160]Witness
