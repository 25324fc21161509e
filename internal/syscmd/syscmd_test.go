package syscmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/danmuck/elwebctl/internal/channel"
	"github.com/danmuck/elwebctl/internal/protocol/frame"
	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/danmuck/elwebctl/internal/testutil/testlog"
)

type duplex struct {
	io.Reader
	io.Writer
}

func framed(t *testing.T, p packet.Packet) []byte {
	t.Helper()
	body, err := packet.Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var buf bytes.Buffer
	if err := frame.WriteFrame(&buf, body, frame.DefaultLimits()); err != nil {
		t.Fatalf("frame: %v", err)
	}
	return buf.Bytes()
}

func sentCommands(t *testing.T, b []byte) []uint16 {
	t.Helper()
	r := frame.NewReader(bytes.NewReader(b), frame.DefaultLimits())
	var out []uint16
	for {
		body, err := r.ReadFrame()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		p, err := packet.Decode(body)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		out = append(out, p.Cmd)
	}
}

func TestGetTime(t *testing.T) {
	testlog.Start(t)
	in := framed(t, packet.Packet{Cmd: packet.CmdRespV, Value: 1_700_000_000})
	var out bytes.Buffer
	client := channel.New(duplex{bytes.NewReader(in), &out}, channel.DefaultConfig())
	defer client.Close()

	cmds := New(client)
	got, err := cmds.Clock(context.Background())
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	if want := time.Unix(1_700_000_000, 0).UTC(); !got.Equal(want) {
		t.Fatalf("clock got=%v want=%v", got, want)
	}
	if sent := sentCommands(t, out.Bytes()); len(sent) != 1 || sent[0] != packet.CmdGetTime {
		t.Fatalf("unexpected commands sent: %v", sent)
	}
}

func TestGetTimeLinkClosed(t *testing.T) {
	testlog.Start(t)
	client := channel.New(duplex{bytes.NewReader(nil), io.Discard}, channel.DefaultConfig())
	defer client.Close()

	if _, err := New(client).GetTime(context.Background()); !errors.Is(err, channel.ErrLinkClosed) {
		t.Fatalf("expected ErrLinkClosed, got %v", err)
	}
}

func TestRestarts(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	client := channel.New(duplex{bytes.NewReader(nil), &out}, channel.DefaultConfig())
	defer client.Close()

	cmds := New(client)
	if err := cmds.SysRestart(); err != nil {
		t.Fatalf("sys restart: %v", err)
	}
	if err := cmds.EspRestart(); err != nil {
		t.Fatalf("esp restart: %v", err)
	}
	sent := sentCommands(t, out.Bytes())
	if len(sent) != 2 || sent[0] != packet.CmdRestartSys || sent[1] != packet.CmdRestart {
		t.Fatalf("unexpected commands sent: %v", sent)
	}
}
