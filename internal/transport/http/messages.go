package http

import "alumni-quiz-proctor/internal/app"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart    Action = "start"
	ActionSelect   Action = "select"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionSubmit   Action = "submit"
	ActionSignal   Action = "signal"
	ActionRetry    Action = "retry"
	ActionPing     Action = "ping"
)

// Request carries every action; fields not used by an action are ignored.
type Request struct {
	Action      Action `json:"action"`
	Agreed      bool   `json:"agreed,omitempty"`
	QuestionID  string `json:"questionId,omitempty"`
	OptionIndex *int   `json:"optionIndex,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Fullscreen  bool   `json:"fullscreen,omitempty"`
}

func (r Request) browserEvent() app.BrowserEvent {
	return app.BrowserEvent{Kind: r.Kind, Hidden: r.Hidden, Fullscreen: r.Fullscreen}
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState      Event = "state"
	EventCountdown  Event = "countdown"
	EventFullscreen Event = "fullscreen"
	EventNavigate   Event = "navigate"
	EventToast      Event = "toast"
	EventResults    Event = "results"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// Envelope wraps every outbound event.
type Envelope struct {
	Event   Event       `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

type CountdownPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type FullscreenPayload struct {
	Active bool `json:"active"`
}

type NavigatePayload struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
