package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total uint64)
	Update(current uint64)
	Finish()
	Error(err error)
}

// TickProgress renders a text progress bar for a running simulation,
// showing the tick rate alongside the completion percentage.
type TickProgress struct {
	mu      sync.Mutex
	total   uint64
	current uint64
	started time.Time
	writer  io.Writer
}

// NewTickProgress creates a progress reporter that writes to w. If w is
// nil, it defaults to os.Stdout.
func NewTickProgress(w io.Writer) *TickProgress {
	if w == nil {
		w = os.Stdout
	}
	return &TickProgress{
		writer: w,
	}
}

// Start initializes the reporter with the total number of ticks.
func (p *TickProgress) Start(total uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update records the number of completed ticks.
func (p *TickProgress) Update(current uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish marks the simulation as complete.
func (p *TickProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during the simulation.
func (p *TickProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *TickProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started)
	rate := float64(p.current) / elapsed.Seconds()

	fmt.Fprintf(p.writer, "\rTick: [%s] %.1f%% (%d/%d) %.1f ticks/s",
		bar, percent, p.current, p.total, rate)
}
