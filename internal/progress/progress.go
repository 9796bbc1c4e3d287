package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
)

// Tracker reports crawl progress: a spinner while list pages are collected,
// then a bar while article contents are fetched.
type Tracker struct {
	out       io.Writer
	quiet     bool
	spinner   *spinner.Spinner
	bar       progress.Model
	total     int
	processed int
	mu        sync.Mutex
}

// New creates a Tracker writing to out. A quiet tracker only counts.
func New(out io.Writer, quiet bool) *Tracker {
	p := &Tracker{
		out:   out,
		quiet: quiet || out == nil,
		bar:   progress.New(progress.WithDefaultGradient()),
	}
	if !p.quiet {
		p.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	}
	return p
}

// Quiet returns a tracker that displays nothing
func Quiet() *Tracker {
	return New(nil, true)
}

// StartPhase shows the spinner with message
func (p *Tracker) StartPhase(message string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Suffix = " " + message
	p.spinner.Start()
}

// UpdatePhase replaces the spinner message
func (p *Tracker) UpdatePhase(message string) {
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = " " + message
	p.spinner.Unlock()
}

// StopPhase stops the spinner
func (p *Tracker) StopPhase() {
	if p.spinner == nil {
		return
	}
	p.spinner.Stop()
}

// SetTotal sets the number of articles to fetch and resets the count
func (p *Tracker) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.processed = 0
}

// Increment records one fetched article and redraws the bar
func (p *Tracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++

	if p.quiet || p.total == 0 {
		return
	}
	fmt.Fprintf(p.out, "\rContents: %s %d/%d articles",
		p.bar.ViewAs(float64(p.processed)/float64(p.total)),
		p.processed,
		p.total)
}

// fraction returns the fetched share of the total
func (p *Tracker) fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return 0
	}
	return float64(p.processed) / float64(p.total)
}

// Finish ends the bar's line
func (p *Tracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.quiet && p.total > 0 {
		fmt.Fprintln(p.out)
	}
}
