package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"NetSimDash/internal/config"
	"NetSimDash/internal/engine/protocol"
	"NetSimDash/internal/model"
	"NetSimDash/internal/probe"
	"NetSimDash/pkg/pcap"
)

func main() {
	// --- Command-Line Flag Parsing ---
	mode := flag.String("mode", "events", "Operating mode: 'events' or 'snapshots' to follow NATS, 'pcap' to summarize a capture.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	file := flag.String("file", "", "Capture file to summarize (required for pcap mode).")
	flag.Parse()

	// --- Mode Dispatch ---
	switch *mode {
	case "events", "snapshots":
		runSubscriber(*configPath, *mode)
	case "pcap":
		runPcapSummary(*file)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runSubscriber prints events or snapshots streamed by ns-sim until interrupted.
func runSubscriber(configPath, mode string) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sub, err := probe.NewSubscriber(cfg.Probe)
	if err != nil {
		log.Fatalf("Failed to create NATS subscriber: %v", err)
	}
	defer sub.Close()

	if mode == "events" {
		err = sub.Start(func(e model.SimulationEvent) {
			fmt.Printf("%s %-18s %s\n", e.At.Format("15:04:05.000"), e.Type, e.Detail)
		})
	} else {
		err = sub.StartSnapshots(func(s model.SimulationSnapshot) {
			fmt.Printf("tick %d mode=%s rules=%d\n", s.Tick, s.AttackMode, len(s.FirewallRules))
			for _, n := range s.Nodes {
				fmt.Printf("  %-10s queue %3d/%-3d processed %6d dropped %6d\n", n.ID, n.QueueDepth, n.QueueCapacity, n.ProcessedCount, n.DroppedCount)
			}
		})
	}
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down subscriber...")
}

type trafficSummary struct {
	packets  int
	bytes    int
	sources  map[string]int
	verdicts map[model.Verdict]int
}

// runPcapSummary prints per-class totals and top sources of a capture file.
func runPcapSummary(path string) {
	if path == "" {
		log.Println("Error: -file flag is required for pcap mode.")
		flag.Usage()
		os.Exit(1)
	}

	reader, err := pcap.NewReader(path)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()
	log.Printf("Reading packets from '%s'...", path)

	out := make(chan *protocol.FrameInfo, 256)
	go reader.ReadPackets(out)

	summaries := map[model.TrafficType]*trafficSummary{}
	for info := range out {
		s, ok := summaries[info.Type]
		if !ok {
			s = &trafficSummary{sources: map[string]int{}, verdicts: map[model.Verdict]int{}}
			summaries[info.Type] = s
		}
		s.packets++
		s.bytes += info.Length
		s.sources[info.SrcIP.String()]++
		s.verdicts[info.Verdict]++
	}

	for _, kind := range []model.TrafficType{model.Legitimate, model.Attacker} {
		s, ok := summaries[kind]
		if !ok {
			continue
		}
		fmt.Printf("%s: %d packets, %d bytes, %d sources\n", kind, s.packets, s.bytes, len(s.sources))
		fmt.Printf("  admitted %d, filtered %d, rejected %d\n",
			s.verdicts[model.VerdictAdmitted], s.verdicts[model.VerdictFiltered], s.verdicts[model.VerdictRejected])
		for _, src := range topSources(s.sources, 5) {
			fmt.Printf("  %-16s %d\n", src, s.sources[src])
		}
	}
}

func topSources(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
