package handler

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WatchHub fans appended chat messages out to researcher websocket
// subscribers, per conversation. Read-only and lossy by design: a slow
// subscriber misses events rather than blocking the interview.
type WatchHub struct {
	mu   sync.RWMutex
	subs map[string][]chan wireMessage
}

func NewWatchHub() *WatchHub {
	return &WatchHub{subs: make(map[string][]chan wireMessage)}
}

// Publish delivers messages to every subscriber of the conversation.
func (h *WatchHub) Publish(conversationID string, messages ...wireMessage) {
	if h == nil {
		return
	}
	h.mu.RLock()
	subs := h.subs[conversationID]
	h.mu.RUnlock()
	for _, ch := range subs {
		for _, m := range messages {
			select {
			case ch <- m:
			default:
			}
		}
	}
}

func (h *WatchHub) subscribe(conversationID string) (chan wireMessage, func()) {
	ch := make(chan wireMessage, 64)
	h.mu.Lock()
	h.subs[conversationID] = append(h.subs[conversationID], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subs[conversationID]
		for i, c := range subs {
			if c == ch {
				h.subs[conversationID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.subs[conversationID]) == 0 {
			delete(h.subs, conversationID)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWatch serves GET /chat/watch?conversationId=... as a websocket stream
// of appended turns.
func (h *ChatHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conversationID := strings.TrimSpace(r.URL.Query().Get("conversationId"))
	if conversationID == "" {
		http.Error(w, "conversationId is required", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, cancel := h.watch.subscribe(conversationID)
	defer cancel()

	// The request context does not fire for a hijacked connection; a read
	// pump is what notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-ch:
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("handler: watch write for %s: %v", conversationID, err)
				return
			}
		}
	}
}
