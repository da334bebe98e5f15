package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// meter renders an in-place progress line: stage label, bar, percentage.
// Updates arrive from the pipeline's progress callback on the generation
// goroutine; rendering is throttled so tight per-row reporting does not
// flood the terminal.
type meter struct {
	w        io.Writer
	enabled  bool
	mu       sync.Mutex
	lastDraw time.Time
	stage    string
	width    int
}

const meterBarWidth = 24

func newMeter(w io.Writer, enabled bool) *meter {
	return &meter{w: w, enabled: enabled, width: meterBarWidth}
}

// Update redraws the progress line. It always returns true; cancellation is
// driven by the context, not the meter.
func (m *meter) Update(stage string, frac float64) bool {
	if !m.enabled {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if stage == m.stage && now.Sub(m.lastDraw) < 50*time.Millisecond && frac < 1 {
		return true
	}
	m.stage = stage
	m.lastDraw = now

	filled := int(frac * float64(m.width))
	if filled > m.width {
		filled = m.width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", m.width-filled)
	fmt.Fprintf(m.w, "\r%s %s %3.0f%% ",
		styleAccent.Render(bar), styleDim.Render(stage), frac*100)
	return true
}

// Clear erases the progress line.
func (m *meter) Clear() {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.w, "\r%s\r", strings.Repeat(" ", m.width+len(m.stage)+8))
}
