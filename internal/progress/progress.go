package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
)

const (
	spinnerDelay   = 100 * time.Millisecond
	spinnerCharSet = 14
	spinnerColor   = "green"
)

// Progress renders CLI progress output with optional spinner.
type Progress struct {
	v bool
	q bool
	s *spinner.Spinner

	mu        sync.Mutex
	lastStage map[string]output.Stage
}

// New creates a Progress printer configured for verbose/quiet output.
func New(verbose, quiet bool) *Progress {
	if quiet || verbose {
		return &Progress{
			v:         verbose,
			q:         quiet,
			s:         nil,
			lastStage: make(map[string]output.Stage),
		}
	}

	spin := spinner.New(spinner.CharSets[spinnerCharSet], spinnerDelay)
	_ = spin.Color(spinnerColor)

	p := &Progress{
		v:         verbose,
		q:         quiet,
		s:         spin,
		lastStage: make(map[string]output.Stage),
	}
	p.s.Start()
	return p
}

// Printf updates the spinner line or prints a log line.
func (p *Progress) Printf(format string, args ...any) {
	if p.s != nil && !p.v {
		p.setSuffix(fmt.Sprintf(" "+format, args...))
	}
	if p.v {
		fmt.Printf(format+"\n", args...) //nolint:forbidigo
	}
}

// PersistentPrintf prints a persistent line that survives spinner updates.
func (p *Progress) PersistentPrintf(format string, args ...any) {
	if p.s != nil && !p.v {
		p.s.Stop()
		fmt.Printf("%s\n", fmt.Sprintf(format, args...)) //nolint:forbidigo
		p.s.Restart()
	}
	if p.v {
		fmt.Printf("%s\n", fmt.Sprintf(format, args...)) //nolint:forbidigo
	}
}

// Debugf prints a debug message when verbose mode is enabled.
func (p *Progress) Debugf(format string, args ...any) {
	if p.v {
		fmt.Printf("🚧 Debug: "+format+"\n", args...) //nolint:forbidigo
	}
}

// DebugSincef prints a debug message with timing info.
func (p *Progress) DebugSincef(start time.Time, format string, args ...any) {
	if p.v {
		fmt.Printf("⏱️ Debug Timing ("+time.Since(start).Round(time.Millisecond).String()+"): "+format+"\n", args...) //nolint:forbidigo
	}
}

// Emit renders a pipeline event. Byte-level updates go to the spinner line,
// stage changes are printed once in verbose mode.
func (p *Progress) Emit(ev output.Event) {
	line := formatEvent(ev)
	if p.s != nil && !p.v {
		p.setSuffix(" " + line)
		return
	}
	if !p.v {
		return
	}
	p.mu.Lock()
	changed := p.lastStage[ev.Key] != ev.Stage
	p.lastStage[ev.Key] = ev.Stage
	p.mu.Unlock()
	if changed || ev.Progress >= 100 {
		fmt.Println(line) //nolint:forbidigo
	}
}

// setSuffix guards the suffix against the spinner's render loop.
func (p *Progress) setSuffix(suffix string) {
	p.s.Lock()
	p.s.Suffix = suffix
	p.s.Unlock()
}

func formatEvent(ev output.Event) string {
	stage := helpers.UpperFirstRune(strings.ReplaceAll(string(ev.Stage), "_", " "))
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %3.0f%%", ev.Key, stage, ev.Progress)
	if ev.BytesReceived > 0 {
		if ev.TotalBytes > 0 {
			fmt.Fprintf(&b, " %s/%s", humanize.IBytes(uint64(ev.BytesReceived)), humanize.IBytes(uint64(ev.TotalBytes)))
		} else {
			fmt.Fprintf(&b, " %s", humanize.IBytes(uint64(ev.BytesReceived)))
		}
	}
	if ev.SpeedBps > 0 {
		fmt.Fprintf(&b, " (%s/s)", humanize.IBytes(uint64(ev.SpeedBps)))
	}
	if ev.Message != "" {
		b.WriteString(" ")
		b.WriteString(ev.Message)
	}
	return b.String()
}

// Write implements io.Writer for log output integration.
func (p *Progress) Write(payload []byte) (int, error) {
	message := strings.TrimRight(string(payload), "\n")
	if message == "" {
		return len(payload), nil
	}
	if p.s != nil && !p.v {
		p.s.Stop()
		fmt.Println(message) //nolint:forbidigo
		p.s.Restart()
		return len(payload), nil
	}
	if p.v {
		fmt.Println(message) //nolint:forbidigo
	}
	return len(payload), nil
}

// Close stops the spinner if it is running.
func (p *Progress) Close() {
	if p.s != nil {
		p.s.Stop()
	}
}
