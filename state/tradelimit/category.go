package tradelimit

import (
	"time"

	"agewitness/engine/library"
)

// AgeCategory is how far a signed account has come. It is derived, never stored.
type AgeCategory int

const (
	LessThanOneMonth AgeCategory = iota
	OneToTwoMonths
	TwoMonthsOrMore
)

func (c AgeCategory) String() string {
	switch c {
	case OneToTwoMonths:
		return "1 to 2 months"
	case TwoMonthsOrMore:
		return "2 months or more"
	default:
		return "less than 1 month"
	}
}

// Factor scales the base trade limit of the payment method.
func (c AgeCategory) Factor() float64 {
	switch c {
	case OneToTwoMonths:
		return 0.5
	case TwoMonthsOrMore:
		return 1
	default:
		return 0.25
	}
}

// Category maps a signed age to its category. A negative age means not signed.
func Category(age time.Duration) AgeCategory {
	switch {
	case age < 30*library.Day:
		return LessThanOneMonth
	case age < 60*library.Day:
		return OneToTwoMonths
	default:
		return TwoMonthsOrMore
	}
}
