package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/messaging/eventconductor"
	"agewitness/messaging/relays"
	"agewitness/state/arbitration"
	"agewitness/state/bootstrap"
	"agewitness/state/payment"
	"agewitness/state/signedwitness"
	"agewitness/state/tradelimit"
	"agewitness/state/verification"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/viper"
)

type node struct {
	settings    actors.Settings
	wallet      library.Wallet
	registry    *witness.Registry
	chain       *signedwitness.Chain
	policy      tradelimit.Policy
	verifier    *verification.Verifier
	arbitrators arbitration.ArbitratorManager
	mediators   arbitration.MediatorManager
	accounts    []payment.PaymentAccount
	clock       library.Clock
}

func main() {
	// Various aspect of this application require global and local settings. To keep things
	// clean and tidy we put these settings in a Viper configuration.
	conf := viper.New()

	// Now we initialise this configuration with basic settings that are required on startup.
	actors.InitConfig(conf)
	// make the config accessible globally
	actors.SetConfig(conf)
	settings := actors.LoadSettings(conf)
	library.SetLogLevel(settings.LogLevel)

	terminateChan := make(chan struct{})
	actors.SetTerminateChan(terminateChan)

	clock := library.SystemClock{}
	wallet := actors.MyWallet()
	replicator := relays.NewReplicator(settings, wallet, clock, relays.DialNostr)

	witnessStore, err := actors.OpenStore(settings, actors.WitnessStore)
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	signedWitnessStore, err := actors.OpenStore(settings, actors.SignedWitnessStore)
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}

	n := &node{
		settings: settings,
		wallet:   wallet,
		registry: witness.NewRegistry(witnessStore, replicator, clock),
		chain:    signedwitness.NewChain(signedWitnessStore, replicator, clock),
		accounts: loadPaymentAccounts(conf),
		clock:    clock,
	}
	n.arbitrators, n.mediators = arbitration.NewResolverManagers()
	acceptArbitrators(n, settings.Arbitrators)
	n.registry.Start()
	n.chain.Start()
	replicator.SetLiveCheck(n.registry.LiveEventCheck(settings.ClockSkewTolerance))
	n.policy = tradelimit.NewPolicy(n.chain, payment.NewCurrencies(settings.NonFiatCurrencies))
	n.verifier = verification.NewVerifier(n.registry, n.policy, clock, settings)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan nostr.Event)
	conductor := eventconductor.New(n.registry, n.chain)
	go replicator.Run(ctx, events)
	go conductor.Run(ctx, events)

	orchestrator := bootstrap.NewOrchestrator(
		n.registry,
		replicator.Connectivity(),
		library.RealScheduler{},
		bootstrap.RandomDelay(settings.RepublishMinDelay, settings.RepublishMaxDelay, rand.New(rand.NewSource(time.Now().UnixNano()))),
		func() []payment.PaymentAccount { return n.accounts },
		wallet.PublicKeyBytes(),
	)
	orchestrator.Start()

	interrupt := make(chan struct{})
	go cliListener(interrupt, n)
	<-interrupt

	orchestrator.Stop()
	cancel()
	actors.Shutdown()
	for _, store := range []actors.AppendOnlyStore{witnessStore, signedWitnessStore} {
		if err := store.Close(); err != nil {
			library.LogCLI(err.Error(), 1)
		}
	}
	fmt.Println("Bye")
}

// acceptArbitrators limits the signed witnesses we take from the network to the configured keys.
func acceptArbitrators(n *node, keys []string) {
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		pubKey, err := hex.DecodeString(k)
		if err != nil {
			library.LogCLI(fmt.Sprintf("ignoring arbitrator key %q: %s", k, err), 2)
			continue
		}
		n.arbitrators.AddAccepted(arbitration.Resolver{PubKey: pubKey, Role: arbitration.ArbitratorRole, RegistrationDate: n.clock.Now()})
	}
	n.chain.SetSignerPolicy(n.arbitrators)
}
