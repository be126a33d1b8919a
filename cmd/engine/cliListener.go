package main

import (
	"crypto/rand"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/state/payment"
	"agewitness/state/tradelimit"
	"agewitness/state/verification"
	"agewitness/state/witness"
	"github.com/eiannone/keyboard"
)

// cliListener is a cheap and nasty way to look inside a running node. It listens for keypresses and executes commands.
func cliListener(interrupt chan struct{}, n *node) {
	fmt.Println("VIEW CURRENT STATE:\nw: witnesses\ns: signed witnesses\na: my accounts\nv: verify my accounts as a peer would\nr: resolvers\nc: engine config\nq: to quit\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			panic(err)
		}
		str := string(r)
		switch str {
		default:
			if k == keyboard.KeyEnter {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to any command. See main.cliListener for more details.")
		case "q":
			close(interrupt)
			return
		case "w":
			for hash, w := range n.registry.GetMap() {
				fmt.Printf("\nWitness: %s\nCreated: %s\n", hash, w.CreatedAt().Format(time.RFC3339))
			}
			fmt.Printf("\n%d witnesses\n", n.registry.Size())
		case "s":
			for key, s := range n.chain.GetMap() {
				fmt.Printf("\nRecord: %s\nWitness: %s\nSigned: %s\nSigner: %x\nTrade Amount: %d\n",
					key, s.WitnessHash, library.FromMillis(s.Date).Format(time.RFC3339), s.SignerPubKey, s.TradeAmount)
			}
			fmt.Printf("\n%d signed witnesses\n", n.chain.Size())
		case "a":
			printAccounts(n)
		case "v":
			verifyAccounts(n)
		case "r":
			for _, a := range n.arbitrators.GetAccepted() {
				fmt.Printf("Arbitrator: %x since %s\n", a.PubKey, a.RegistrationDate.Format(time.RFC3339))
			}
			for _, m := range n.mediators.GetAccepted() {
				fmt.Printf("Mediator: %x since %s\n", m.PubKey, m.RegistrationDate.Format(time.RFC3339))
			}
		case "c":
			fmt.Println("CURRENT CONFIG")
			for k, v := range actors.MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", k, v)
			}
		}
	}
}

func printAccounts(n *node) {
	now := n.clock.Now()
	for _, a := range n.accounts {
		lookup := n.registry.Find(a.Payload, n.wallet.PublicKeyBytes())
		w := n.registry.GetOrCreate(a.Payload, n.wallet.PublicKeyBytes())
		_, published := lookup.(witness.Found)
		signedAge := n.policy.SignedAge(lookup, now)
		fmt.Printf("\nAccount: %s (%s, %s)\nWitness: %s published: %t\nAge: %s\nSigned Age: %s (%s)\nTrade Limit: %d sat\n",
			a.Name, a.Method.ID, a.CurrencyCode, w.Hash, published, witness.AccountAge(w, now).Round(time.Hour),
			signedAge.Round(time.Hour), tradelimit.Category(signedAge),
			n.policy.ComputeLimit(a.Method.MaxTradeLimit, a.CurrencyCode, lookup, now))
	}
}

// verifyAccounts runs the peer handshake against our own accounts, the way a counterparty would.
func verifyAccounts(n *node) {
	for _, a := range n.accounts {
		if a.IsAsset {
			continue
		}
		nonce := make([]byte, verification.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			library.LogCLI(err.Error(), 1)
			return
		}
		claim, err := verification.Respond(n.wallet, a.Payload, nonce, n.clock.Now())
		if err != nil {
			library.LogCLI(err.Error(), 1)
			continue
		}
		trade := verification.Trade{Amount: payment.Coin / 100, CurrencyCode: a.CurrencyCode, BaseLimit: a.Method.MaxTradeLimit}
		result := n.verifier.Verify(trade, claim)
		if result.OK() {
			fmt.Printf("%s: OK\n", a.Name)
			continue
		}
		fmt.Printf("%s: %s\n", a.Name, result.Err())
	}
}
