package payment

// PaymentAccountPayload is the part of a payment account that is shown to trading peers.
// AgeWitnessInputData identifies the real world account (IBAN, email, ...) and never leaves the
// node except inside a trade contract.
type PaymentAccountPayload struct {
	ID                  string `json:"id"`
	PaymentMethodID     string `json:"paymentMethodId"`
	AgeWitnessInputData []byte `json:"ageWitnessInputData"`
	Salt                []byte `json:"salt"`
}

func (p PaymentAccountPayload) AccountInputDataWithSalt() []byte {
	b := make([]byte, 0, len(p.AgeWitnessInputData)+len(p.Salt))
	b = append(b, p.AgeWitnessInputData...)
	return append(b, p.Salt...)
}

type PaymentAccount struct {
	ID           string
	Name         string
	Method       PaymentMethod
	CurrencyCode string
	Payload      PaymentAccountPayload

	// IsAsset marks altcoin accounts. They carry no bank identity so they never get a witness.
	IsAsset bool
}

type PaymentMethod struct {
	ID string

	// MaxTradeLimit in satoshis, before any account age scaling.
	MaxTradeLimit int64
}

const (
	SEPA               = "SEPA"
	SEPAInstant        = "SEPA_INSTANT"
	NationalBank       = "NATIONAL_BANK"
	SameBank           = "SAME_BANK"
	SpecificBanks      = "SPECIFIC_BANKS"
	InteracETransfer   = "INTERAC_E_TRANSFER"
	ClearXChange       = "CLEAR_X_CHANGE"
	Revolut            = "REVOLUT"
	ChaseQuickPay      = "CHASE_QUICK_PAY"
	FasterPayments     = "UK_FASTER_PAYMENTS"
	F2F                = "F2F"
	CashDeposit        = "CASH_DEPOSIT"
	MoneyGram          = "MONEY_GRAM"
	WesternUnion       = "WESTERN_UNION"
	BlockChains        = "BLOCK_CHAINS"
	BlockChainsInstant = "BLOCK_CHAINS_INSTANT"
)

// Coin is one bitcoin in satoshis.
const Coin int64 = 100_000_000

const (
	TradeLimitHighRisk    = Coin / 4
	TradeLimitMidRisk     = Coin / 2
	TradeLimitLowRisk     = Coin
	TradeLimitVeryLowRisk = 2 * Coin
)

var methods = map[string]PaymentMethod{
	SEPA:               {ID: SEPA, MaxTradeLimit: TradeLimitMidRisk},
	SEPAInstant:        {ID: SEPAInstant, MaxTradeLimit: TradeLimitMidRisk},
	NationalBank:       {ID: NationalBank, MaxTradeLimit: TradeLimitMidRisk},
	SameBank:           {ID: SameBank, MaxTradeLimit: TradeLimitMidRisk},
	SpecificBanks:      {ID: SpecificBanks, MaxTradeLimit: TradeLimitMidRisk},
	InteracETransfer:   {ID: InteracETransfer, MaxTradeLimit: TradeLimitHighRisk},
	ClearXChange:       {ID: ClearXChange, MaxTradeLimit: TradeLimitHighRisk},
	Revolut:            {ID: Revolut, MaxTradeLimit: TradeLimitHighRisk},
	ChaseQuickPay:      {ID: ChaseQuickPay, MaxTradeLimit: TradeLimitHighRisk},
	FasterPayments:     {ID: FasterPayments, MaxTradeLimit: TradeLimitHighRisk},
	F2F:                {ID: F2F, MaxTradeLimit: TradeLimitLowRisk},
	CashDeposit:        {ID: CashDeposit, MaxTradeLimit: TradeLimitMidRisk},
	MoneyGram:          {ID: MoneyGram, MaxTradeLimit: TradeLimitMidRisk},
	WesternUnion:       {ID: WesternUnion, MaxTradeLimit: TradeLimitMidRisk},
	BlockChains:        {ID: BlockChains, MaxTradeLimit: TradeLimitVeryLowRisk},
	BlockChainsInstant: {ID: BlockChainsInstant, MaxTradeLimit: TradeLimitVeryLowRisk},
}

// GetPaymentMethodByID returns a known payment method.
func GetPaymentMethodByID(id string) (PaymentMethod, bool) {
	m, ok := methods[id]
	return m, ok
}

func IsAssetMethod(id string) bool {
	return id == BlockChains || id == BlockChainsInstant
}
