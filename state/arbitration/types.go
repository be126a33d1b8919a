package arbitration

import (
	"agewitness/state/payment"
	"agewitness/state/witness"
)

type Winner int

const (
	NoWinner Winner = iota
	Buyer
	Seller
)

type DisputeResult struct {
	Winner Winner
}

// Contract is the subset of a trade contract that attestation needs.
type Contract struct {
	TradeID                    string
	PaymentMethodID            string
	CurrencyCode               string
	TradeAmount                int64
	BuyerPaymentAccountPayload payment.PaymentAccountPayload
	BuyerPubKey                []byte
	SellerPubKey               []byte
}

type Dispute struct {
	ID       string
	Contract Contract
	Closed   bool
	Result   *DisputeResult
}

func (d Dispute) BuyerWon() bool {
	return d.Closed && d.Result != nil && d.Result.Winner == Buyer
}

// BuyerDataItem is a buyer account that an arbitrator may sign.
type BuyerDataItem struct {
	Payload      payment.PaymentAccountPayload
	Witness      witness.Witness
	TradeAmount  int64
	SellerPubKey []byte
}
