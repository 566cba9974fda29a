package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NetSimDash/internal/api"
	"NetSimDash/internal/capture"
	"NetSimDash/internal/config"
	"NetSimDash/internal/engine/manager"
	"NetSimDash/internal/health"
	"NetSimDash/internal/metrics"
	"NetSimDash/internal/model"
	"NetSimDash/internal/probe"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML configuration file.")
	flag.Parse()

	log.Println("Starting ns-sim...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Build the simulation driver
	m, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 3. Optional sinks hang off the event, packet and tick hooks
	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		reg.GetPrometheusRegistry().MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m.OnEvent(reg.RecordEvent)
		m.OnTick(reg.RecordTick)
		reg.ObserveSnapshot(m.Snapshot())
	}

	var pub *probe.Publisher
	if cfg.Probe.Enabled {
		pub, err = probe.NewPublisher(cfg.Probe)
		if err != nil {
			log.Fatalf("Failed to create NATS publisher: %v", err)
		}
		m.OnEvent(pub.OnEvent)
		m.OnTick(func(s model.SimulationSnapshot, _ time.Duration) {
			if err := pub.PublishSnapshot(s); err != nil {
				log.Printf("Error publishing snapshot: %v", err)
			}
		})
	}

	var worker *capture.Worker
	if cfg.Capture.Enabled {
		worker, err = capture.NewWorker(cfg.Capture)
		if err != nil {
			log.Fatalf("Failed to create capture worker: %v", err)
		}
		m.OnPacket(worker.Tap)
	}

	var healthServer *health.Server
	if cfg.GRPC.Enabled {
		healthServer = health.NewServer()
		lis, err := net.Listen("tcp", cfg.GRPC.ListenAddr)
		if err != nil {
			log.Fatalf("Failed to listen on %s: %v", cfg.GRPC.ListenAddr, err)
		}
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				log.Printf("gRPC server stopped: %v", err)
			}
		}()
	}

	// 4. HTTP API
	metricsPath := cfg.Metrics.Path
	httpServer := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewServer(m, reg, metricsPath).Handler(),
	}
	go func() {
		log.Printf("HTTP API server starting on %s", cfg.API.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// 5. Run
	m.Start()
	if healthServer != nil {
		healthServer.SetServing(true)
	}

	// 6. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, stopping simulator...")

	if healthServer != nil {
		healthServer.SetServing(false)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	m.Stop()
	if worker != nil {
		worker.Stop()
	}
	if pub != nil {
		pub.Close()
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	log.Println("Shutdown complete.")
}
