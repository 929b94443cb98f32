package output

import "sync"

// Monotonic wraps next so that progress for a key never moves backwards.
// A StageStarting event resets the key and StageCompleted forgets it.
func Monotonic(next Sink) Sink {
	if next == nil {
		next = Discard
	}
	return &monotonic{next: next, last: make(map[string]float64)}
}

type monotonic struct {
	next Sink
	mu   sync.Mutex
	last map[string]float64
}

func (m *monotonic) Emit(ev Event) {
	m.mu.Lock()
	switch ev.Stage {
	case StageStarting:
		m.last[ev.Key] = ev.Progress
	case StageCompleted:
		delete(m.last, ev.Key)
	default:
		if prev, ok := m.last[ev.Key]; ok && ev.Progress < prev {
			ev.Progress = prev
		}
		m.last[ev.Key] = ev.Progress
	}
	m.mu.Unlock()
	m.next.Emit(ev)
}
