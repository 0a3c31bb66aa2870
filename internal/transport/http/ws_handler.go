package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"quizzz-client/internal/app"
)

// WSHandler streams round board snapshots of one tournament per connection.
// Connections watching the same tournament share one refresh loop.
type WSHandler struct {
	board    *app.RoundBoard
	refresh  time.Duration
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	watches map[string]*tournamentWatch
}

// tournamentWatch is the refresh loop of one tournament and the error
// channels of the connections using it.
type tournamentWatch struct {
	stop context.CancelFunc
	errs map[chan error]struct{}
}

func NewWSHandler(board *app.RoundBoard, refresh time.Duration, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		board:   board,
		refresh: refresh,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		watches: make(map[string]*tournamentWatch),
	}
}

func watchKey(communityID, tournamentID int64) string {
	return fmt.Sprintf("%d:%d", communityID, tournamentID)
}

// acquire joins the tournament's refresh loop, starting it for the first
// connection. started is false when the loop was already running.
func (h *WSHandler) acquire(communityID, tournamentID int64) (errs <-chan error, started bool, release func()) {
	key := watchKey(communityID, tournamentID)
	ch := make(chan error, 1)

	h.mu.Lock()
	w, ok := h.watches[key]
	if !ok {
		ctx, stop := context.WithCancel(context.Background())
		w = &tournamentWatch{stop: stop, errs: make(map[chan error]struct{})}
		h.watches[key] = w
		go h.board.Watch(ctx, communityID, tournamentID, h.refresh, func(err error) {
			h.publishError(key, err)
		})
	}
	w.errs[ch] = struct{}{}
	h.mu.Unlock()

	release = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := w.errs[ch]; !ok {
			return
		}
		delete(w.errs, ch)
		close(ch)
		if len(w.errs) == 0 {
			w.stop()
			delete(h.watches, key)
		}
	}
	return ch, !ok, release
}

func (h *WSHandler) publishError(key string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.watches[key]
	if !ok {
		return
	}
	for ch := range w.errs {
		select {
		case ch <- err:
		default:
		}
	}
}

// watchers reports how many connections share the tournament's loop.
func (h *WSHandler) watchers(communityID, tournamentID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if w, ok := h.watches[watchKey(communityID, tournamentID)]; ok {
		return len(w.errs)
	}
	return 0
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes a "board" message on every
// refresh. Clients may send {"type":"refresh"} to force one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	communityID, err1 := strconv.ParseInt(r.URL.Query().Get("community"), 10, 64)
	tournamentID, err2 := strconv.ParseInt(r.URL.Query().Get("tournament"), 10, 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "missing or invalid community or tournament", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"community_id": communityID, "tournament_id": tournamentID})
	updates, cancel := h.board.Subscribe(communityID, tournamentID)
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	enqueue := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				stop()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case board, ok := <-updates:
				if !ok {
					return
				}
				enqueue(outboundMessage[any]{Type: "board", Payload: board})
			case <-ctx.Done():
				return
			}
		}
	}()

	var helpers sync.WaitGroup
	errs, started, release := h.acquire(communityID, tournamentID)
	defer release()
	helpers.Add(1)
	go func() {
		defer helpers.Done()
		for err := range errs {
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}()
	if !started {
		// the running loop already published its first board
		helpers.Add(1)
		go func() {
			defer helpers.Done()
			board, err := h.board.Snapshot(ctx, communityID, tournamentID)
			if err != nil {
				if ctx.Err() == nil {
					enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				}
				return
			}
			enqueue(outboundMessage[any]{Type: "board", Payload: board})
		}()
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			if _, err := h.board.Refresh(ctx, communityID, tournamentID); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		default:
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	stop()
	release()
	helpers.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}
