package server

import (
	"net/http"

	"beliefshift/internal/interview/handler"
	"beliefshift/internal/interview/middleware"
)

func NewMux(chatHandler *handler.ChatHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/chat/start", chatHandler.HandleStart)
	mux.HandleFunc("/chat/reply", chatHandler.HandleReply)
	mux.HandleFunc("/chat/watch", chatHandler.HandleWatch)
	mux.HandleFunc("/healthz", chatHandler.HandleHealthz)

	return middleware.CORS(mux)
}
