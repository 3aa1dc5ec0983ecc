package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"reply-presets/preset"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is used in both directions. The server sends "rows" and "error";
// the client sends "edit".
type wsMessage struct {
	Type  string       `json:"type"`
	ID    string       `json:"id,omitempty"`
	Text  string       `json:"text,omitempty"`
	Rows  []preset.Row `json:"rows,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		alog.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	clog := alog.With("client", uuid.NewString())
	fields := h.store.Fields()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	// Holds only the newest snapshot; the subscriber callback never blocks.
	updates := make(chan preset.Set, 1)
	unsubscribe := h.store.Subscribe(func(set preset.Set) {
		for {
			select {
			case updates <- set:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	rows, err := h.store.Rows(r.Context())
	if err != nil {
		clog.Error("initial load failed", "err", err)
		writeMsg(wsMessage{Type: "error", Error: err.Error()}) //nolint:errcheck
		return
	}
	if err := writeMsg(wsMessage{Type: "rows", Rows: rows}); err != nil {
		return
	}
	clog.Debug("client connected")

	// Goroutine: push backend changes until the read loop below returns.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		for {
			select {
			case set := <-updates:
				if err := writeMsg(wsMessage{Type: "rows", Rows: preset.Rows(set, fields)}); err != nil {
					return
				}
			case <-connDone:
				return
			}
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			clog.Debug("client disconnected", "err", err)
			return
		}

		switch msg.Type {
		case "edit":
			if !preset.HasField(fields, msg.ID) {
				writeMsg(wsMessage{Type: "error", ID: msg.ID, Error: preset.ErrUnknownField.Error()}) //nolint:errcheck
				continue
			}
			h.store.Edit(msg.ID, strings.TrimSpace(msg.Text))
		default:
			clog.Debug("ignoring ws message", "type", msg.Type)
		}
	}
}
