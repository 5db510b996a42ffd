package ingest

import (
	"strings"
	"time"

	"logdam/internal/loggen"
)

const maxDemoBurst = 1000

// DemoSource emits generated lines at a fixed rate, computed from elapsed
// time on each poll so it never blocks.
type DemoSource struct {
	gen   *loggen.Generator
	every time.Duration
	last  time.Time
	now   func() time.Time
}

func NewDemoSource(gen *loggen.Generator, rate float64) *DemoSource {
	if rate <= 0 {
		rate = 5
	}
	every := time.Duration(float64(time.Second) / rate)
	if every <= 0 {
		every = time.Microsecond
	}
	d := &DemoSource{gen: gen, every: every, now: time.Now}
	d.last = d.now()
	return d
}

func (d *DemoSource) Name() string { return "demo:" + d.gen.Format() }

func (d *DemoSource) ReadAvailable() ([]byte, error) {
	now := d.now()
	n := int(now.Sub(d.last) / d.every)
	if n <= 0 {
		return nil, nil
	}
	d.last = d.last.Add(time.Duration(n) * d.every)
	if n > maxDemoBurst {
		n = maxDemoBurst
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(d.gen.Line(now))
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

func (d *DemoSource) Close() error { return nil }
