package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"agewitness/engine/library"
	"agewitness/state/payment"
	"github.com/spf13/viper"
)

// accountConfig is one entry of paymentAccounts in config.yaml.
type accountConfig struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Method    string `mapstructure:"method"`
	Currency  string `mapstructure:"currency"`
	InputData string `mapstructure:"inputData"`
	Salt      string `mapstructure:"salt"`
}

func loadPaymentAccounts(conf *viper.Viper) []payment.PaymentAccount {
	var configs []accountConfig
	if err := conf.UnmarshalKey("paymentAccounts", &configs); err != nil {
		library.LogCLI(fmt.Sprintf("could not read paymentAccounts: %s", err), 1)
		return nil
	}
	var accounts []payment.PaymentAccount
	for _, c := range configs {
		a, err := c.paymentAccount()
		if err != nil {
			library.LogCLI(fmt.Sprintf("skipping payment account %q: %s", c.ID, err), 2)
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts
}

func (c accountConfig) paymentAccount() (payment.PaymentAccount, error) {
	method, ok := payment.GetPaymentMethodByID(strings.ToUpper(c.Method))
	if !ok {
		return payment.PaymentAccount{}, fmt.Errorf("unknown payment method %q", c.Method)
	}
	salt, err := hex.DecodeString(c.Salt)
	if err != nil {
		return payment.PaymentAccount{}, fmt.Errorf("salt is not hex: %w", err)
	}
	return payment.PaymentAccount{
		ID:           c.ID,
		Name:         c.Name,
		Method:       method,
		CurrencyCode: strings.ToUpper(c.Currency),
		Payload: payment.PaymentAccountPayload{
			ID:                  c.ID,
			PaymentMethodID:     method.ID,
			AgeWitnessInputData: []byte(c.InputData),
			Salt:                salt,
		},
		IsAsset: payment.IsAssetMethod(method.ID),
	}, nil
}
