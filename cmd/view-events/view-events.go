package main

import (
	"context"
	"fmt"
	"time"

	"agewitness/engine/actors"
	"agewitness/engine/library"
	"agewitness/messaging/eventconductor"
	"agewitness/messaging/relays"
	"agewitness/state/signedwitness"
	"agewitness/state/witness"
	"github.com/nbd-wtf/go-nostr"
	"github.com/spf13/viper"
)

// view-events reads the witness stores from the configured relays into memory and prints the
// signing graph as mermaid. Nothing is persisted or published.
func main() {
	conf := viper.New()
	// Now we initialise this configuration with basic settings that are required on startup.
	actors.InitConfig(conf)
	// make the config accessible globally
	actors.SetConfig(conf)
	settings := actors.LoadSettings(conf)
	settings.DoNotPublish = true
	library.SetLogLevel(settings.LogLevel)

	registry := witness.NewRegistry(actors.NewMemoryStore(), nil, nil)
	chain := signedwitness.NewChain(actors.NewMemoryStore(), nil, nil)
	conductor := eventconductor.New(registry, chain)
	replicator := relays.NewReplicator(settings, library.Wallet{}, nil, relays.DialNostr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	events := make(chan nostr.Event)
	go replicator.Run(ctx, events)
L:
	for {
		select {
		case e := <-events:
			conductor.Push(e)
			conductor.Drain()
		case <-ctx.Done():
			break L
		}
	}
	fmt.Printf("\n%d witnesses, %d signed witnesses\n", registry.Size(), chain.Size())
	fmt.Printf("\n\n%s\n", mermaid(registry.GetMap(), chain.GetMap()))
}

func mermaid(witnesses witness.Mapped, signed signedwitness.Mapped) string {
	graph := "graph LR"
	for _, s := range signed {
		signer := fmt.Sprintf("%x", s.SignerPubKey)
		if len(signer) > 8 {
			signer = signer[:8]
		}
		graph = graph + fmt.Sprintf("\n%s-->%s[%s]", signer, s.WitnessHash, library.FromMillis(s.Date).Format("2006-01-02"))
	}
	for hash := range witnesses {
		graph = graph + fmt.Sprintf("\n%s", hash)
	}
	return graph
}
