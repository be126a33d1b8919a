package payment

import (
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/currency"
)

// ISO 4217 codes that are not national currencies.
var nonNational = []string{"XAU", "XAG", "XPT", "XPD", "XDR", "XTS", "XXX", "XBA", "XBB", "XBC", "XBD", "XSU", "XUA"}

// Currencies classifies currency codes into fiat and everything else.
type Currencies struct {
	nonFiat []string
}

// NewCurrencies takes extra codes that must never count as fiat even if ISO 4217 knows them.
func NewCurrencies(nonFiat []string) Currencies {
	c := Currencies{}
	for _, code := range nonFiat {
		c.nonFiat = append(c.nonFiat, strings.ToUpper(code))
	}
	return c
}

func (c Currencies) IsFiatCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if slices.Contains(c.nonFiat, code) || slices.Contains(nonNational, code) {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}
