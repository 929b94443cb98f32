package progress

import (
	"strings"
	"sync"
	"testing"

	"github.com/briandowns/spinner"
	"github.com/greeddj/go-retrokit/internal/retrokit/output"
)

func TestFormatEvent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ev   output.Event
		want []string
	}{
		{
			name: "stage only",
			ev:   output.Event{Key: "zelda", Stage: output.StageFindingRom, Progress: 65, Message: "Finding ROM file..."},
			want: []string{"[zelda]", "Finding rom", " 65%", "Finding ROM file..."},
		},
		{
			name: "bytes",
			ev: output.Event{
				Key:           output.CoreKey("mgba"),
				Stage:         output.StageDownloadingCore,
				Progress:      50,
				BytesReceived: 1024,
				TotalBytes:    2048,
				SpeedBps:      4096,
			},
			want: []string{"[core:mgba]", "Downloading core", "1.0 KiB/2.0 KiB", "(4.0 KiB/s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := formatEvent(tt.ev)
			for _, part := range tt.want {
				if !strings.Contains(got, part) {
					t.Fatalf("expected %q in %q", part, got)
				}
			}
		})
	}
}

func TestConcurrentSpinnerUpdates(t *testing.T) {
	t.Parallel()
	p := &Progress{
		s:         spinner.New(spinner.CharSets[spinnerCharSet], spinnerDelay),
		lastStage: make(map[string]output.Stage),
	}
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				p.Emit(output.Event{Key: output.CoreKey("mgba"), Stage: output.StageDownloadingCore, Progress: float64(j)})
				p.Printf("worker %d step %d", i, j)
			}
		}()
	}
	wg.Wait()

	p.s.Lock()
	suffix := p.s.Suffix
	p.s.Unlock()
	if !strings.HasPrefix(suffix, " ") || strings.TrimSpace(suffix) == "" {
		t.Fatalf("unexpected spinner suffix %q", suffix)
	}
}
