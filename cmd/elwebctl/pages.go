package main

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/danmuck/elwebctl/internal/webserver"
	"github.com/rs/zerolog/log"
)

const (
	ledURL     = "/LED.html.json"
	voltageURL = "/Voltage.html.json"

	minFrequency  = 1
	maxFrequency  = 10
	samplesPerRow = 5
	historyRows   = 10
)

type pages struct {
	led     *ledPage
	voltage *voltagePage
}

func newPages(start time.Time) *pages {
	return &pages{
		led:     &ledPage{frequency: 2},
		voltage: &voltagePage{start: start},
	}
}

func (p *pages) register(web *webserver.Server) error {
	if err := web.RegisterHandler(ledURL, p.led); err != nil {
		return err
	}
	return web.RegisterHandler(voltageURL, p.voltage)
}

// ledPage drives the blink demo: a frequency form, a blinking checkbox
// and on/off buttons.
type ledPage struct {
	frequency int32
	blinking  bool
	presses   int
}

func (p *ledPage) ServeWeb(ev *webserver.Event) {
	switch ev.Kind {
	case webserver.EventLoad, webserver.EventRefresh:
		r := ev.Reply()
		r.SetInt("frequency", p.frequency)
		r.SetBool("blinking", p.blinking)
		r.SetString("text", p.status())
		r.SetInt("presses", int32(p.presses))
	case webserver.EventButtonPress:
		p.presses++
		switch ev.ID {
		case "btn_on":
			p.blinking = true
		case "btn_off":
			p.blinking = false
		default:
			log.Debug().Str("button", ev.ID).Msg("elwebctl.led unknown button")
		}
	case webserver.EventSetField:
		switch ev.ID {
		case "frequency":
			p.frequency = min(max(ev.Arg().Int(), minFrequency), maxFrequency)
		case "blinking":
			p.blinking = ev.Arg().Bool()
		default:
			log.Debug().Str("field", ev.ID).Msg("elwebctl.led unknown field")
		}
	}
}

func (p *ledPage) status() string {
	if !p.blinking {
		return "LED is off"
	}
	return fmt.Sprintf("LED is blinking at %d Hz", p.frequency)
}

type voltageRow struct {
	at             time.Duration
	low, avg, high float32
}

// voltagePage keeps a short min/avg/max history of voltage samples.
type voltagePage struct {
	start   time.Time
	last    float32
	pending []float32
	rows    []voltageRow
}

func (p *voltagePage) Record(at time.Time, v float32) {
	p.last = v
	p.pending = append(p.pending, v)
	if len(p.pending) < samplesPerRow {
		return
	}
	row := voltageRow{at: at.Sub(p.start), low: p.pending[0], high: p.pending[0]}
	var sum float32
	for _, s := range p.pending {
		row.low = min(row.low, s)
		row.high = max(row.high, s)
		sum += s
	}
	row.avg = sum / float32(len(p.pending))
	p.pending = p.pending[:0]
	p.rows = append(p.rows, row)
	if len(p.rows) > historyRows {
		p.rows = p.rows[len(p.rows)-historyRows:]
	}
}

func (p *voltagePage) table() string {
	rows := [][]string{{"Time", "Min", "AVG", "Max"}}
	for _, r := range p.rows {
		rows = append(rows, []string{
			fmt.Sprintf("%d s", int64(r.at/time.Second)),
			fmt.Sprintf("%.2f V", r.low),
			fmt.Sprintf("%.2f V", r.avg),
			fmt.Sprintf("%.2f V", r.high),
		})
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(out)
}

func (p *voltagePage) ServeWeb(ev *webserver.Event) {
	switch ev.Kind {
	case webserver.EventLoad, webserver.EventRefresh:
		r := ev.Reply()
		r.SetFloat("voltage", p.last)
		r.SetJSON("table", p.table())
	case webserver.EventButtonPress:
		if ev.ID == "btn_clear" {
			p.rows = p.rows[:0]
			p.pending = p.pending[:0]
		}
	}
}

// demoVoltage stands in for an ADC reading: a slow wobble around 3.3 V.
func demoVoltage(now time.Time) float32 {
	phase := float64(now.UnixMilli()%60000) / 60000 * 2 * math.Pi
	return float32(3.3 + 0.05*math.Sin(phase))
}
