package main

import (
	"flag"
	"log"
	"os"

	"NetSimDash/internal/engine/protocol"
	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/engine/simulation"
	"NetSimDash/internal/model"
	"NetSimDash/pkg/pcap"
)

// pcapgen runs the simulator headless and writes every ingress packet, tagged
// with its verdict, to a pcap file.
func main() {
	outputFile := flag.String("o", "netsim.pcap", "Output pcap file path")
	ticks := flag.Int("t", 100, "Number of ticks to simulate")
	mode := flag.String("mode", "pulse", "Attack mode: idle, pulse, stealth or flood")
	seed := flag.Uint64("seed", 1, "Random seed")
	flag.Parse()

	attack := model.AttackMode(*mode)
	if !attack.Valid() {
		log.Fatalf("Unknown attack mode '%s'", *mode)
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w, err := pcap.NewWriter(f)
	if err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	sim := simulation.New(simulation.WithRandom(random.NewSeeded(*seed)), simulation.WithAttackMode(attack))
	written := 0
	sim.OnPacket(func(p model.Packet, v simulation.Verdict) {
		frame, err := protocol.EncodePacket(p, v)
		if err != nil {
			log.Printf("Skipping packet %s: %v", p.ID, err)
			return
		}
		if err := w.WriteFrame(p.CreatedAt, frame); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
		written++
	})

	log.Printf("Simulating %d ticks in %s mode into %s...", *ticks, attack, *outputFile)
	for i := 0; i < *ticks; i++ {
		sim.Tick()
	}
	log.Printf("Wrote %d packets.", written)
}
