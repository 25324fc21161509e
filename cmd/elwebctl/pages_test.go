package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/danmuck/elwebctl/internal/channel"
	"github.com/danmuck/elwebctl/internal/protocol/frame"
	"github.com/danmuck/elwebctl/internal/protocol/packet"
	"github.com/danmuck/elwebctl/internal/protocol/value"
	"github.com/danmuck/elwebctl/internal/testutil/testlog"
	"github.com/danmuck/elwebctl/internal/webserver"
)

type harness struct {
	out *bytes.Buffer
	web *webserver.Server
}

func newHarness(t *testing.T, p *pages) *harness {
	t.Helper()
	out := &bytes.Buffer{}
	client := channel.New(struct {
		io.Reader
		io.Writer
	}{bytes.NewReader(nil), out}, channel.DefaultConfig())
	t.Cleanup(func() { _ = client.Close() })
	web := webserver.New(client)
	if err := p.register(web); err != nil {
		t.Fatalf("register pages: %v", err)
	}
	return &harness{out: out, web: web}
}

func (h *harness) request(t *testing.T, reason webserver.Reason, url string, extra ...[]byte) {
	t.Helper()
	raw := make([]byte, 2)
	binary.LittleEndian.PutUint16(raw, uint16(reason))
	args := append([][]byte{raw, {10, 0, 0, 5}, {0x50, 0}, []byte(url)}, extra...)
	if err := h.web.Dispatch(&packet.Packet{Cmd: packet.CmdWebReqCB, Argc: uint16(len(args)), Args: args}); err != nil {
		t.Fatalf("dispatch %s %s: %v", reason, url, err)
	}
}

// values decodes the tagged values of the last reply written.
func (h *harness) values(t *testing.T) map[string]value.Value {
	t.Helper()
	fr := frame.NewReader(bytes.NewReader(h.out.Bytes()), frame.DefaultLimits())
	var body []byte
	for {
		b, err := fr.ReadFrame()
		if err != nil {
			break
		}
		body = b
	}
	if body == nil {
		t.Fatalf("no reply written")
	}
	out := map[string]value.Value{}
	off := packet.HeaderLen
	for i := 0; off+2 <= len(body); i++ {
		n := int(binary.LittleEndian.Uint16(body[off:]))
		off += 2
		arg := body[off : off+n]
		off += n + (4-(n+2)%4)%4
		if i < 2 || n == 0 {
			continue
		}
		v, err := value.Decode(arg)
		if err != nil {
			t.Fatalf("decode value %d: %v", i, err)
		}
		out[v.Name] = v
	}
	return out
}

func field(name, v string) []byte {
	return append(append(append([]byte{0}, name...), 0), v...)
}

func TestLEDPageFormAndButtons(t *testing.T) {
	testlog.Start(t)
	p := newPages(time.Now())
	h := newHarness(t, p)

	h.request(t, webserver.ReasonSubmit, ledURL, field("frequency", "25"), field("blinking", "on"))
	if p.led.frequency != maxFrequency || !p.led.blinking {
		t.Fatalf("unexpected led state: %+v", p.led)
	}
	h.request(t, webserver.ReasonButton, ledURL, []byte("btn_off"))
	if p.led.blinking || p.led.presses != 1 {
		t.Fatalf("button not applied: %+v", p.led)
	}

	h.request(t, webserver.ReasonLoad, ledURL)
	vals := h.values(t)
	if v := vals["frequency"]; v.Tag != value.TagInteger || v.Integer != maxFrequency {
		t.Fatalf("unexpected frequency %+v", v)
	}
	if v := vals["text"]; v.String != "LED is off" {
		t.Fatalf("unexpected text %+v", v)
	}
	if v := vals["blinking"]; v.Tag != value.TagBoolean || v.Boolean {
		t.Fatalf("unexpected blinking %+v", v)
	}
}

func TestVoltagePageTable(t *testing.T) {
	testlog.Start(t)
	start := time.Unix(1000, 0)
	p := newPages(start)
	h := newHarness(t, p)

	for i := 1; i <= samplesPerRow; i++ {
		p.voltage.Record(start.Add(time.Duration(i)*time.Second), 3.0+float32(i)/10)
	}
	h.request(t, webserver.ReasonRefresh, voltageURL)
	vals := h.values(t)

	if v := vals["voltage"]; v.Tag != value.TagFloat || v.Float != 3.5 {
		t.Fatalf("unexpected voltage %+v", v)
	}
	tv := vals["table"]
	if tv.Tag != value.TagJSON {
		t.Fatalf("table should be json, got %v", tv.Tag)
	}
	var rows [][]string
	if err := json.Unmarshal([]byte(tv.String), &rows); err != nil {
		t.Fatalf("table json: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "5 s" || rows[1][1] != "3.10 V" || rows[1][3] != "3.50 V" {
		t.Fatalf("unexpected table %v", rows)
	}
}

func TestVoltageHistoryIsBounded(t *testing.T) {
	testlog.Start(t)
	v := &voltagePage{start: time.Now()}
	for i := 0; i < samplesPerRow*(historyRows+3); i++ {
		v.Record(time.Now(), 3.3)
	}
	if len(v.rows) != historyRows {
		t.Fatalf("history rows got=%d want=%d", len(v.rows), historyRows)
	}
	if len(v.pending) != 0 {
		t.Fatalf("pending samples left: %d", len(v.pending))
	}
}

func TestDemoVoltageRange(t *testing.T) {
	testlog.Start(t)
	for s := int64(0); s < 60; s += 7 {
		v := demoVoltage(time.Unix(s, 0))
		if v < 3.24 || v > 3.36 {
			t.Fatalf("demo voltage out of range: %v", v)
		}
	}
}
