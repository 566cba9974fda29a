package protocol

import (
	"fmt"
	"hash/fnv"
	"net"
	"time"

	"NetSimDash/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Ports identifying the traffic class of a simulated frame.
const (
	LegitimatePort = 443
	AttackerPort   = 4444

	// HeaderLength is the Ethernet + IPv4 + UDP header overhead.
	HeaderLength = 14 + 20 + 8
	// MinFrameLength is the Ethernet minimum without FCS; shorter frames are padded.
	MinFrameLength = 60
)

var (
	clientMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	edgeMAC   = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}

	// GatewayIP is the destination address of every simulated frame.
	GatewayIP = net.IPv4(10, 0, 0, 1).To4()
)

// Ingress verdicts are carried in the IPv4 TOS byte.
var verdictTOS = map[model.Verdict]uint8{
	model.VerdictAdmitted: 0x00,
	model.VerdictFiltered: 0x04,
	model.VerdictRejected: 0x08,
}

// FrameInfo is what ParsePacket extracts from a simulated frame.
type FrameInfo struct {
	Timestamp time.Time
	SrcIP     net.IP
	DstIP     net.IP
	SrcPort   uint16
	DstPort   uint16
	Length    int
	Type      model.TrafficType
	Verdict   model.Verdict
}

// EncodePacket renders a simulated packet as an Ethernet/IPv4/UDP frame whose
// total length is the packet size, padded up to MinFrameLength.
func EncodePacket(p model.Packet, verdict model.Verdict) ([]byte, error) {
	src := net.ParseIP(p.SourceIP).To4()
	if src == nil {
		return nil, fmt.Errorf("packet %s has non-IPv4 source '%s'", p.ID, p.SourceIP)
	}
	tos, ok := verdictTOS[verdict]
	if !ok {
		return nil, fmt.Errorf("packet %s has unknown verdict '%s'", p.ID, verdict)
	}

	dstPort := layers.UDPPort(LegitimatePort)
	if p.Type == model.Attacker {
		dstPort = AttackerPort
	}

	eth := &layers.Ethernet{
		SrcMAC:       clientMAC,
		DstMAC:       edgeMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TOS:      tos,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    src,
		DstIP:    GatewayIP,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(ephemeralPort(p.ID)),
		DstPort: dstPort,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("failed to bind udp checksum: %w", err)
	}

	payload := make([]byte, max(0, p.Size-HeaderLength))
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("failed to serialize frame: %w", err)
	}
	return buf.Bytes(), nil
}

// ParsePacket uses gopacket to decode a raw frame and extract key information.
func ParsePacket(data []byte) (*FrameInfo, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	info := &FrameInfo{
		Timestamp: time.Now(),
		Length:    len(data),
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		info.Timestamp = meta.Timestamp
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)
	info.SrcIP = ip.SrcIP
	info.DstIP = ip.DstIP
	info.Verdict = verdictFromTOS(ip.TOS)

	l = packet.Layer(layers.LayerTypeUDP)
	if l == nil {
		return nil, fmt.Errorf("not a UDP packet")
	}
	udp := l.(*layers.UDP)
	info.SrcPort = uint16(udp.SrcPort)
	info.DstPort = uint16(udp.DstPort)

	info.Type = model.Legitimate
	if info.DstPort == AttackerPort {
		info.Type = model.Attacker
	}
	return info, nil
}

func ephemeralPort(id string) uint16 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return uint16(49152 + h.Sum32()%16384)
}

// verdictFromTOS returns an empty verdict for frames not written by EncodePacket.
func verdictFromTOS(tos uint8) model.Verdict {
	for verdict, v := range verdictTOS {
		if v == tos {
			return verdict
		}
	}
	return ""
}
