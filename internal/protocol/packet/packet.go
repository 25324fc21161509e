package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderLen is the fixed cmd/argc/value prefix of every packet.
const HeaderLen = 8

// Command codes understood by the co-processor.
const (
	CmdNull       uint16 = 0
	CmdSync       uint16 = 1
	CmdRespV      uint16 = 2
	CmdRespCB     uint16 = 3
	CmdWifiStatus uint16 = 4
	CmdCbAdd      uint16 = 5
	CmdCbEvents   uint16 = 6
	CmdGetTime    uint16 = 7

	CmdWebData  uint16 = 31
	CmdWebReqCB uint16 = 32

	CmdRestart    uint16 = 50
	CmdRestartSys uint16 = 51
)

var (
	ErrTruncated    = errors.New("packet: truncated data")
	ErrArgTooLarge  = errors.New("packet: argument too large")
	ErrMalformedArg = errors.New("packet: malformed argument")
)

// Packet is one decoded command packet. Args alias the decoded buffer.
type Packet struct {
	Cmd   uint16
	Argc  uint16
	Value uint32
	Args  [][]byte
}

func CommandName(cmd uint16) string {
	switch cmd {
	case CmdNull:
		return "null"
	case CmdSync:
		return "sync"
	case CmdRespV:
		return "resp_v"
	case CmdRespCB:
		return "resp_cb"
	case CmdWifiStatus:
		return "wifi_status"
	case CmdCbAdd:
		return "cb_add"
	case CmdCbEvents:
		return "cb_events"
	case CmdGetTime:
		return "get_time"
	case CmdWebData:
		return "web_data"
	case CmdWebReqCB:
		return "web_req_cb"
	case CmdRestart:
		return "restart"
	case CmdRestartSys:
		return "restart_sys"
	default:
		return fmt.Sprintf("cmd_%d", cmd)
	}
}

// Decode parses b into a packet carrying exactly the argc arguments the
// header declares. The padding after the final argument may be absent.
func Decode(b []byte) (*Packet, error) {
	if len(b) < HeaderLen {
		return nil, ErrTruncated
	}
	p := &Packet{
		Cmd:   binary.LittleEndian.Uint16(b[0:2]),
		Argc:  binary.LittleEndian.Uint16(b[2:4]),
		Value: binary.LittleEndian.Uint32(b[4:8]),
	}
	if p.Argc == 0 {
		return p, nil
	}
	p.Args = make([][]byte, 0, p.Argc)
	off := HeaderLen
	for i := 0; i < int(p.Argc); i++ {
		if len(b)-off < 2 {
			return nil, fmt.Errorf("%w: arg %d header", ErrTruncated, i)
		}
		n := int(binary.LittleEndian.Uint16(b[off : off+2]))
		off += 2
		if len(b)-off < n {
			return nil, fmt.Errorf("%w: arg %d wants %d bytes", ErrTruncated, i, n)
		}
		p.Args = append(p.Args, b[off:off+n:off+n])
		off += n
		off += min(pad(n), len(b)-off)
	}
	return p, nil
}

// Builder assembles one outbound packet argument by argument.
type Builder struct {
	buf  []byte
	args int
}

func NewBuilder(cmd uint16, value uint32, argc uint16) *Builder {
	buf := make([]byte, HeaderLen, 64)
	binary.LittleEndian.PutUint16(buf[0:2], cmd)
	binary.LittleEndian.PutUint16(buf[2:4], argc)
	binary.LittleEndian.PutUint32(buf[4:8], value)
	return &Builder{buf: buf}
}

// AddArg appends data as one length-prefixed, zero-padded argument.
func (b *Builder) AddArg(data []byte) error {
	if len(data) > int(^uint16(0)) {
		return ErrArgTooLarge
	}
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(data)))
	b.buf = append(b.buf, n[:]...)
	b.buf = append(b.buf, data...)
	for i := 0; i < pad(len(data)); i++ {
		b.buf = append(b.buf, 0)
	}
	b.args++
	return nil
}

// Args reports how many arguments have been appended.
func (b *Builder) Args() int {
	return b.args
}

// Bytes returns the encoded packet without framing.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Encode is the one-shot form of Builder for a complete packet.
func Encode(p Packet) ([]byte, error) {
	b := NewBuilder(p.Cmd, p.Value, p.Argc)
	for _, arg := range p.Args {
		if err := b.AddArg(arg); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}

func pad(n int) int {
	return (4 - (n+2)%4) % 4
}
