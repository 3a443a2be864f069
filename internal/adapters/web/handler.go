package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
	gameCommands "github.com/andrescamacho/neonrails-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/neonrails-go/internal/application/game/queries"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

const maxBodyBytes = 4 << 10

// Handler exposes the game over HTTP and WebSocket. Every intent goes through the mediator.
type Handler struct {
	mediator common.Mediator
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the HTTP handler. An empty allowedOrigins keeps the
// same-origin WebSocket check; "*" allows any origin.
func NewHandler(mediator common.Mediator, hub *Hub, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		}
	}

	return &Handler{
		mediator: mediator,
		hub:      hub,
		logger:   logger.Named("web"),
		upgrader: upgrader,
	}
}

// Routes returns the router of the API
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", h.getState)
	mux.HandleFunc("POST /api/stations", h.buildStation)
	mux.HandleFunc("POST /api/stations/{id}/upgrade", h.upgradeStation)
	mux.HandleFunc("POST /api/stations/{id}/chat", h.chat)
	mux.HandleFunc("POST /api/play", h.setPlaying(true))
	mux.HandleFunc("POST /api/pause", h.setPlaying(false))
	mux.HandleFunc("GET /ws", h.serveWs)
	mux.HandleFunc("GET /healthz", h.healthz)
	return h.withLogging(mux)
}

// IntentResponse is the body answering a player intent
type IntentResponse struct {
	Outcome     game.Outcome     `json:"outcome"`
	Reason      string           `json:"reason,omitempty"`
	State       economy.State    `json:"state"`
	BuildID     string           `json:"buildId,omitempty"`
	Station     *economy.Station `json:"station,omitempty"`
	StationName string           `json:"stationName,omitempty"`
	Reply       string           `json:"reply,omitempty"`
	Degraded    bool             `json:"degraded,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func newIntentResponse(r game.Result) IntentResponse {
	resp := IntentResponse{Outcome: r.Outcome, State: r.State}
	if r.Reason != nil {
		resp.Reason = r.Reason.Error()
	}
	return resp
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), &gameQueries.GetGameStateQuery{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) buildStation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), &gameCommands.BuildStationCommand{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := resp.(*game.BuildResult)
	body := newIntentResponse(result.Result)
	body.BuildID = result.BuildID
	h.writeIntent(w, result.Result, http.StatusAccepted, body)
}

func (h *Handler) upgradeStation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), &gameCommands.UpgradeStationCommand{StationID: r.PathValue("id")})
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := resp.(*game.UpgradeResult)
	body := newIntentResponse(result.Result)
	if !result.Rejected() {
		body.Station = &result.Station
	}
	h.writeIntent(w, result.Result, http.StatusOK, body)
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	resp, err := h.mediator.Send(r.Context(), &gameCommands.ChatWithPassengerCommand{
		StationID: r.PathValue("id"),
		Message:   req.Message,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := resp.(*game.ChatResult)
	body := newIntentResponse(result.Result)
	body.StationName = result.StationName
	body.Reply = result.Reply
	body.Degraded = result.Degraded
	h.writeIntent(w, result.Result, http.StatusOK, body)
}

func (h *Handler) setPlaying(playing bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.mediator.Send(r.Context(), &gameCommands.SetPlayingCommand{Playing: playing})
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.mediator.Send(ctx, &gameQueries.GetGameStateQuery{}); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": h.hub.ClientCount()})
}

func (h *Handler) serveWs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.mediator.Send(r.Context(), &gameQueries.GetGameStateQuery{})
	if err != nil {
		h.writeError(w, err)
		return
	}
	initial, err := json.Marshal(Message{Type: MessageSnapshot, Payload: resp})
	if err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, h.logger)
	client.send <- initial
	if !h.hub.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) writeIntent(w http.ResponseWriter, result game.Result, acceptedStatus int, body IntentResponse) {
	status := acceptedStatus
	if result.Rejected() {
		status = http.StatusConflict
	}
	writeJSON(w, status, body)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *shared.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error()})
	case errors.Is(err, game.ErrSessionClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "game session closed"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the WebSocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
