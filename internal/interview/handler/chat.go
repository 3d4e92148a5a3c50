package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"beliefshift/internal/interview/conductor"
	"beliefshift/internal/interview/entity"
)

// ChatHandler exposes the interview conductor over plain JSON HTTP.
type ChatHandler struct {
	conductor *conductor.Conductor
	watch     *WatchHub
}

func NewChatHandler(c *conductor.Conductor, watch *WatchHub) *ChatHandler {
	return &ChatHandler{conductor: c, watch: watch}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toWire(turns []entity.Turn) []wireMessage {
	out := make([]wireMessage, 0, len(turns))
	for _, t := range turns {
		if t.Role == entity.RoleSystem {
			continue
		}
		out = append(out, wireMessage{Role: string(t.Role), Content: t.Content})
	}
	return out
}

// HandleStart serves POST /chat/start.
func (h *ChatHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		UserID         string `json:"userId"`
		ConversationID string `json:"conversationId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.UserID) == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	res, err := h.conductor.Start(r.Context(), in.UserID, in.ConversationID)
	if err != nil {
		if errors.Is(err, conductor.ErrMissingParticipant) {
			http.Error(w, "participant not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.watch.Publish(res.ConversationID, toWire(res.Messages)...)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"conversationId": res.ConversationID,
		"messages":       toWire(res.Messages),
	})
}

// HandleReply serves POST /chat/reply.
func (h *ChatHandler) HandleReply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		ConversationID   string `json:"conversationId"`
		Message          string `json:"message"`
		IsSummaryRequest bool   `json:"isSummaryRequest,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.ConversationID) == "" || strings.TrimSpace(in.Message) == "" {
		http.Error(w, "conversationId and message are required", http.StatusBadRequest)
		return
	}

	res, err := h.conductor.Reply(r.Context(), in.ConversationID, in.Message, in.IsSummaryRequest)
	if err != nil {
		switch {
		case errors.Is(err, conductor.ErrMissingConversation):
			http.Error(w, "conversation not found", http.StatusNotFound)
		case errors.Is(err, conductor.ErrWallClockExceeded), errors.Is(err, conductor.ErrConversationComplete):
			http.Error(w, "conversation is over", http.StatusGone)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.watch.Publish(in.ConversationID,
		wireMessage{Role: "user", Content: in.Message},
		wireMessage{Role: "assistant", Content: res.Reply},
	)

	out := map[string]any{"reply": res.Reply}
	if res.SessionEnded {
		out["sessionEnded"] = true
	}
	if res.Updated {
		out["updated"] = true
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleHealthz serves GET /healthz.
func (h *ChatHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
