package pcap

import (
	"errors"
	"io"
	"log"
	"os"

	"NetSimDash/internal/engine/protocol"

	"github.com/google/gopacket/pcapgo"
)

// Reader reads simulated frames from a pcap file.
type Reader struct {
	file *os.File
	r    *pcapgo.Reader
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Reader{file: file, r: r}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// ReadPackets reads all frames from the file and sends the parsed
// FrameInfo to the provided channel. It closes the channel when done.
func (r *Reader) ReadPackets(out chan<- *protocol.FrameInfo) {
	defer close(out)

	for {
		data, ci, err := r.r.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Printf("Error reading packet: %v", err)
			return
		}

		info, err := protocol.ParsePacket(data)
		if err != nil {
			// Unsupported or corrupt frames are logged and skipped.
			log.Printf("Error parsing packet: %v", err)
			continue
		}
		info.Timestamp = ci.Timestamp
		info.Length = ci.Length
		out <- info
	}
}
