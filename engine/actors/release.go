package actors

import "time"

// WitnessReleaseDate is when account age witnesses went live network wide. No honest witness
// can be dated before it.
var WitnessReleaseDate = time.Date(2017, time.November, 11, 0, 0, 0, 0, time.UTC)

// Nostr kinds carrying the two append-only stores.
const (
	KindAccountAgeWitness = 640800
	KindSignedWitness     = 640802
)

// Store names, also the directory names under flatFileDir.
const (
	WitnessStore       = "witness"
	SignedWitnessStore = "signedwitness"
)
