package capture

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/engine/protocol"
	"NetSimDash/internal/engine/simulation"
	"NetSimDash/internal/model"
	"NetSimDash/pkg/pcap"
)

// Record is one packet observed at ingress together with its verdict.
type Record struct {
	Packet  model.Packet
	Verdict simulation.Verdict
}

// Worker writes ingress packets to a pcap file on a background goroutine.
type Worker struct {
	records  chan Record
	out      io.WriteCloser
	writer   *pcap.Writer
	name     string
	wg       sync.WaitGroup
	stopOnce sync.Once

	written atomic.Int64
	dropped atomic.Int64
}

// NewWorker creates a timestamped capture file under cfg.Path and starts writing.
func NewWorker(cfg config.CaptureConfig) (*Worker, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}
	fileName := fmt.Sprintf("%s.pcap", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(cfg.Path, fileName)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	w, err := newWorker(file, filePath, cfg.BufferSize)
	if err != nil {
		file.Close()
		return nil, err
	}
	log.Printf("Capture worker started, writing to: %s", filePath)
	return w, nil
}

func newWorker(out io.WriteCloser, name string, bufferSize int) (*Worker, error) {
	if bufferSize <= 0 {
		bufferSize = 4096
	}
	writer, err := pcap.NewWriter(out)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		records: make(chan Record, bufferSize),
		out:     out,
		writer:  writer,
		name:    name,
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Worker) run() {
	defer w.wg.Done()
	for rec := range w.records {
		frame, err := protocol.EncodePacket(rec.Packet, rec.Verdict)
		if err != nil {
			log.Printf("CaptureWorker: Error encoding packet %s: %v", rec.Packet.ID, err)
			continue
		}
		if err := w.writer.WriteFrame(rec.Packet.CreatedAt, frame); err != nil {
			log.Printf("CaptureWorker: Error writing packet: %v", err)
			continue
		}
		w.written.Add(1)
	}
}

// Tap queues a packet for capture. It never blocks; when the buffer is
// full the packet is counted as dropped.
func (w *Worker) Tap(packet model.Packet, verdict simulation.Verdict) {
	select {
	case w.records <- Record{Packet: packet, Verdict: verdict}:
	default:
		if w.dropped.Add(1) == 1 {
			log.Println("CaptureWorker: Channel is full, dropping packets.")
		}
	}
}

// Stop drains the queue and closes the capture file. Tap must not be called afterwards.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.records)
		w.wg.Wait()
		if err := w.out.Close(); err != nil {
			log.Printf("CaptureWorker: Error closing file: %v", err)
		}
		log.Printf("Capture worker stopped; %d packets written, %d dropped.", w.written.Load(), w.dropped.Load())
	})
}

// Name returns the capture file path.
func (w *Worker) Name() string { return w.name }

// Stats returns how many packets were written and dropped so far.
func (w *Worker) Stats() (written, dropped int64) {
	return w.written.Load(), w.dropped.Load()
}
