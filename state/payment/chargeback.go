package payment

import "golang.org/x/exp/slices"

// ChargeBackRisk tells whether a trade paid with a method in a currency can be reversed by a
// bank after the fact.
type ChargeBackRisk interface {
	HasChargebackRisk(paymentMethodID, currencyCode string) bool
}

// DefaultChargeBackRiskMethods are bank transfers that a payer can claw back.
var DefaultChargeBackRiskMethods = []string{
	SEPA,
	SEPAInstant,
	InteracETransfer,
	ClearXChange,
	Revolut,
	NationalBank,
	SameBank,
	SpecificBanks,
	ChaseQuickPay,
}

type methodRisk struct {
	methods    []string
	currencies Currencies
}

// NewChargeBackRisk flags the given methods, and only for fiat currencies.
func NewChargeBackRisk(methods []string, currencies Currencies) ChargeBackRisk {
	if len(methods) == 0 {
		methods = DefaultChargeBackRiskMethods
	}
	return methodRisk{methods: methods, currencies: currencies}
}

func (m methodRisk) HasChargebackRisk(paymentMethodID, currencyCode string) bool {
	return slices.Contains(m.methods, paymentMethodID) && m.currencies.IsFiatCurrency(currencyCode)
}
