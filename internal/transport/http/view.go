package http

import (
	"sync"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/domain"
)

// wsView renders a session by queueing events for the connection's writer.
type wsView struct {
	send chan Envelope
	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

func newWSView(buffer int) *wsView {
	return &wsView{
		send: make(chan Envelope, buffer),
		done: make(chan struct{}),
	}
}

func (v *wsView) emit(event Event, payload interface{}) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return
	}
	select {
	case v.send <- Envelope{Event: event, Payload: payload}:
	case <-v.done:
	}
}

// close unblocks pending emits, then closes send for the writer.
func (v *wsView) close() {
	v.once.Do(func() {
		close(v.done)
		v.mu.Lock()
		v.closed = true
		close(v.send)
		v.mu.Unlock()
	})
}

func (v *wsView) Render(s app.Snapshot) {
	v.emit(EventState, s)
}

func (v *wsView) Countdown(secondsLeft int) {
	v.emit(EventCountdown, CountdownPayload{TimeLeft: secondsLeft})
}

func (v *wsView) RequestFullscreen() {
	v.emit(EventFullscreen, FullscreenPayload{Active: true})
}

func (v *wsView) ExitFullscreen() {
	v.emit(EventFullscreen, FullscreenPayload{Active: false})
}

func (v *wsView) Navigate(path string, replace bool) {
	v.emit(EventNavigate, NavigatePayload{Path: path, Replace: replace})
}

func (v *wsView) Toast(t app.Toast) {
	v.emit(EventToast, t)
}

func (v *wsView) ShowResults(r domain.Results) {
	v.emit(EventResults, r)
}

func (v *wsView) Error(err error) {
	v.emit(EventError, ErrorPayload{Error: err.Error()})
}

func (v *wsView) Pong() {
	v.emit(EventPong, nil)
}
