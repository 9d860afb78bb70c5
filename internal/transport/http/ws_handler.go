package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"alumni-quiz-proctor/internal/app"
	"alumni-quiz-proctor/internal/auth"
	"alumni-quiz-proctor/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait   = 10 * time.Second
	readWait    = 5 * time.Minute
	sendBuffer  = 64
	maxReadSize = 4096
)

// buildUpgrader validates the Origin header; an empty allow-list permits all origins.
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a proctored quiz session to one browser tab.
type WSHandler struct {
	service  *app.ProctorService
	resolver *auth.Resolver
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.ProctorService, resolver *auth.Resolver, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		service:  service,
		resolver: resolver,
		upgrader: buildUpgrader(allowedOrigins),
		log:      log.With().Str("component", "ws_handler").Logger(),
	}
}

// ServeWS handles GET /ws?jobId=&tabId=&sessionId=&token=. The bearer token may
// also come from the Authorization header.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobID := q.Get("jobId")
	tabID := q.Get("tabId")
	if jobID == "" || tabID == "" {
		http.Error(w, "missing jobId or tabId", http.StatusBadRequest)
		return
	}

	raw := q.Get("token")
	if raw == "" {
		raw = r.Header.Get("Authorization")
	}
	learner, err := h.resolver.Resolve(raw)
	if err != nil {
		http.Error(w, domain.ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxReadSize)

	wsLog := h.log.With().
		Str("job_id", jobID).
		Str("tab_id", tabID).
		Str("user_id", learner.ID).
		Logger()

	view := newWSView(sendBuffer)
	writerDone := make(chan struct{})
	go h.writeLoop(conn, view, wsLog, writerDone)
	defer func() {
		view.close()
		<-writerDone
	}()

	ctx := r.Context()
	session, err := h.service.Open(ctx, app.OpenRequest{
		Learner:   learner,
		TabID:     tabID,
		JobID:     jobID,
		SessionID: q.Get("sessionId"),
	}, view)
	if err != nil {
		// Rejections have already redirected the page.
		if !errors.Is(err, domain.ErrInvalidSession) && !errors.Is(err, domain.ErrAlreadyAttempted) {
			view.Error(err)
		}
		wsLog.Info().Err(err).Msg("Quiz view rejected")
		return
	}

	wsLog.Info().Msg("Learner connected")
	_ = session.Load(ctx)

	for {
		var req Request
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				view.Error(errors.New("malformed message"))
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}
		h.dispatch(ctx, session, view, wsLog, req)
	}

	// Losing the page mid-attempt counts as leaving it.
	if session.Phase() == domain.PhaseActive {
		session.Observe(app.BrowserEvent{Kind: app.EventDisconnect})
	}
	session.Close()
}

func (h *WSHandler) dispatch(ctx context.Context, session *app.Session, view *wsView, log zerolog.Logger, req Request) {
	var err error
	switch req.Action {
	case ActionStart:
		_, err = session.Start(ctx, req.Agreed)
	case ActionSelect:
		if req.OptionIndex == nil {
			err = domain.ErrOptionOutOfRange
			break
		}
		err = session.SelectAnswer(req.QuestionID, *req.OptionIndex)
	case ActionNext:
		err = session.Next()
	case ActionPrevious:
		err = session.Previous()
	case ActionSubmit:
		err = session.Submit(ctx)
	case ActionSignal:
		session.Observe(req.browserEvent())
	case ActionRetry:
		// A failed load is rendered as an error panel, not reported twice.
		if lerr := session.Load(ctx); lerr != nil && errors.Is(lerr, domain.ErrInvalidTransition) {
			err = lerr
		}
	case ActionPing:
		view.Pong()
	default:
		log.Warn().Str("action", string(req.Action)).Msg("Unknown action")
		err = errors.New("unknown action: " + string(req.Action))
	}
	if err != nil {
		log.Debug().Err(err).Str("action", string(req.Action)).Msg("Action rejected")
		view.Error(err)
	}
}

// writeLoop is the connection's only writer. After a write failure it keeps
// draining so emitters never block on a dead socket.
func (h *WSHandler) writeLoop(conn *websocket.Conn, view *wsView, log zerolog.Logger, done chan<- struct{}) {
	defer close(done)
	failed := false
	for msg := range view.send {
		if failed {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Str("event", string(msg.Event)).Msg("WebSocket write failed")
			failed = true
		}
	}
	if !failed {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
