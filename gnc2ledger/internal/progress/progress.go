// Package progress renders a single-line byte counter on a terminal.
// It stays silent on non-terminal writers, so redirecting stderr does
// not fill the destination with carriage returns.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
	"golang.org/x/time/rate"
)

const refreshInterval = 100 * time.Millisecond

// Meter counts bytes flowing through a reader and redraws its line at
// most once per refresh interval.
type Meter struct {
	w       io.Writer
	label   string
	total   int64
	count   int64
	enabled bool
	render  rate.Sometimes
}

// NewMeter returns a meter labeled label that expects total bytes; pass
// zero when the size is unknown (e.g. standard input).
func NewMeter(w io.Writer, label string, total int64) *Meter {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}
	return &Meter{
		w:       w,
		label:   label,
		total:   total,
		enabled: enabled,
		render:  rate.Sometimes{First: 1, Interval: refreshInterval},
	}
}

// Reader wraps r so the meter advances as r is consumed.
func (m *Meter) Reader(r io.Reader) io.Reader {
	return &meterReader{m: m, r: r}
}

type meterReader struct {
	m *Meter
	r io.Reader
}

func (mr *meterReader) Read(p []byte) (int, error) {
	n, err := mr.r.Read(p)
	mr.m.Add(int64(n))
	return n, err
}

// Count reports the bytes seen so far.
func (m *Meter) Count() int64 { return m.count }

// Add advances the meter by n bytes.
func (m *Meter) Add(n int64) {
	m.count += n
	if !m.enabled {
		return
	}
	m.render.Do(m.draw)
}

func (m *Meter) draw() {
	if m.total > 0 {
		fmt.Fprintf(m.w, "\r%s: %d/%d bytes", m.label, m.count, m.total)
		return
	}
	fmt.Fprintf(m.w, "\r%s: %d bytes", m.label, m.count)
}

// Done draws the final count and terminates the meter's line.
func (m *Meter) Done() {
	if !m.enabled {
		return
	}
	m.draw()
	fmt.Fprintln(m.w)
}
