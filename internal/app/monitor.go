package app

import (
	"sync"

	"alumni-quiz-proctor/internal/metrics"
)

// Signal names an integrity violation.
type Signal string

const (
	SignalBlur           Signal = "blur"
	SignalHidden         Signal = "hidden"
	SignalFullscreenExit Signal = "fullscreen-exit"
	SignalUnload         Signal = "unload"
	SignalDisconnect     Signal = "disconnect"
)

// Browser event kinds as reported by the page.
const (
	EventBlur             = "blur"
	EventVisibilityChange = "visibilitychange"
	EventFullscreenChange = "fullscreenchange"
	EventBeforeUnload     = "beforeunload"
	EventDisconnect       = "disconnect"
)

// BrowserEvent is a window/document event forwarded by the page.
type BrowserEvent struct {
	Kind       string `json:"kind"`
	Hidden     bool   `json:"hidden"`
	Fullscreen bool   `json:"fullscreen"`
}

// Violation maps the event to a signal. Becoming visible or entering
// fullscreen are not violations.
func (e BrowserEvent) Violation() (Signal, bool) {
	switch e.Kind {
	case EventBlur:
		return SignalBlur, true
	case EventVisibilityChange:
		return SignalHidden, e.Hidden
	case EventFullscreenChange:
		return SignalFullscreenExit, !e.Fullscreen
	case EventBeforeUnload:
		return SignalUnload, true
	case EventDisconnect:
		return SignalDisconnect, true
	}
	return "", false
}

// Monitor funnels every violation into a single trip. It listens only while
// armed and disarms itself on the first violation.
type Monitor struct {
	mu    sync.Mutex
	armed bool
	trip  func(Signal)
}

func NewMonitor(trip func(Signal)) *Monitor {
	return &Monitor{trip: trip}
}

func (m *Monitor) Arm() {
	m.mu.Lock()
	m.armed = true
	m.mu.Unlock()
}

func (m *Monitor) Disarm() {
	m.mu.Lock()
	m.armed = false
	m.mu.Unlock()
}

func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// Observe reports whether the event tripped the monitor.
func (m *Monitor) Observe(ev BrowserEvent) bool {
	signal, violation := ev.Violation()
	if !violation {
		return false
	}

	m.mu.Lock()
	tripped := m.armed
	m.armed = false
	m.mu.Unlock()

	metrics.IntegritySignal(string(signal), tripped)
	if tripped {
		m.trip(signal)
	}
	return tripped
}
