package http

import (
	"net/http"
)

// NewRouter mounts the REST routes, the websocket endpoint and a health check.
func NewRouter(h *Handler, ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws", ws.ServeWS)
	h.Register(mux)
	return mux
}
