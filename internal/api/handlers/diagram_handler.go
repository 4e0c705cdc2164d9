package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/erd-studio/engine/internal/api/types"
	"github.com/erd-studio/engine/internal/editor"
	appErr "github.com/erd-studio/engine/pkg/errors"
	"github.com/erd-studio/engine/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1 << 20
)

// Sessions hands out open editor sessions; *editor.Registry implements it.
type Sessions interface {
	Open(ctx context.Context, id string) (*editor.Session, error)
	Touch(id string)
}

var _ Sessions = (*editor.Registry)(nil)

// DiagramHandler exposes an open diagram over HTTP and a websocket.
type DiagramHandler struct {
	sessions Sessions
	dispatch *Dispatcher
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewDiagramHandler(sessions Sessions, dispatch *Dispatcher, checkOrigin func(*http.Request) bool) *DiagramHandler {
	return &DiagramHandler{
		sessions: sessions,
		dispatch: dispatch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		log: logger.Named("diagram"),
	}
}

func (h *DiagramHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, s.Snapshot(), nil)
}

func (h *DiagramHandler) Command(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var cmd types.Command
	if err := decode(w, r, h.dispatch.validate, &cmd); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.sessions.Touch(id)
	res, err := h.dispatch.Apply(s, cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, types.CommandResponse{Result: res, Snapshot: s.Snapshot()}, nil)
}

// Live upgrades to a websocket. The server pushes a snapshot on connect and
// after every transition; the client sends command envelopes and gets a
// result or error frame for each one.
func (h *DiagramHandler) Live(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.String("project_id", id), zap.Error(err))
		return
	}
	log := h.log.With(zap.String("project_id", id))
	log.Info("live client connected", zap.String("remote", r.RemoteAddr))

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan types.LiveMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		h.writeLoop(ctx, conn, s, updates, out, log)
	}()

	h.readLoop(ctx, conn, id, s, out, log)
	cancel()
	<-writerDone
	log.Info("live client disconnected")
}

func (h *DiagramHandler) readLoop(ctx context.Context, conn *websocket.Conn, id string, s *editor.Session, out chan<- types.LiveMessage, log *zap.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("live read failed", zap.Error(err))
			}
			return
		}
		h.sessions.Touch(id)

		var msg types.LiveMessage
		var cmd types.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			msg = types.LiveMessage{Type: types.LiveError, Error: types.FromAppError(appErr.Wrap(err, appErr.CodeInvalid, "invalid json"))}
		} else if res, err := h.dispatch.Apply(s, cmd); err != nil {
			msg = types.LiveMessage{Type: types.LiveError, Error: types.FromAppError(err)}
		} else if res != nil {
			msg = types.LiveMessage{Type: types.LiveResult, Result: res}
		} else {
			continue
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (h *DiagramHandler) writeLoop(ctx context.Context, conn *websocket.Conn, s *editor.Session, updates <-chan struct{}, out <-chan types.LiveMessage, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	send := func(m types.LiveMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			log.Debug("live write failed", zap.Error(err))
			return false
		}
		return true
	}
	snapshot := func() bool {
		snap := s.Snapshot()
		return send(types.LiveMessage{Type: types.LiveSnapshot, Snapshot: &snap})
	}

	if !snapshot() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case _, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"), time.Now().Add(writeWait))
				return
			}
			if !snapshot() {
				return
			}
		case m := <-out:
			if !send(m) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
