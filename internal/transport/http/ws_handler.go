package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"quiz-results-service/internal/app"
	"quiz-results-service/internal/domain"
)

// WSHandler accepts quiz submissions over a websocket bound to one quiz.
type WSHandler struct {
	service  *app.SubmissionService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWSHandler(service *app.SubmissionService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	ResultID  int64   `json:"id"`
	OptionIDs []int64 `json:"options_ids"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func errorMessage(err error) outboundMessage[any] {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg, Status: status}}
}

// ServeWS upgrades the request and grades every submit message against the
// quiz named by the quizId query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := principal(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil {
		writeError(w, h.log, domain.InvalidInput("missing or malformed quizId"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		broken := false
		for msg := range send {
			if broken {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write failed", slog.Any("err", err))
				broken = true
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage(domain.InvalidInput("invalid submit payload"))
				continue
			}
			result, err := h.service.Pass(r.Context(), userID, domain.SubmissionRequest{
				ResultID:  payload.ResultID,
				QuizID:    quizID,
				OptionIDs: payload.OptionIDs,
			})
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
		default:
			send <- errorMessage(domain.InvalidInput("unsupported message type"))
		}
	}

	close(send)
	<-writerDone
}
