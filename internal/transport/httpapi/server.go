package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sandevgo/recallbot/internal/config"
	"github.com/sandevgo/recallbot/internal/core"
	"github.com/sandevgo/recallbot/pkg/log"
)

// TurnHandler is the slice of the router this transport needs.
type TurnHandler interface {
	HandleTurn(ctx context.Context, turn core.Turn) (string, error)
}

type Server struct {
	cfg     *config.HTTPConfig
	handler TurnHandler
	srv     *http.Server
	baseCtx context.Context
}

func NewServer(ctx context.Context, cfg *config.HTTPConfig, handler TurnHandler) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		baseCtx: ctx,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("starting http api")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

type chatRequest struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" || req.UserID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and message are required"})
		return
	}

	reply, err := s.handler.HandleTurn(s.requestCtx(r), core.Turn{
		UserID:  req.UserID,
		Text:    req.Message,
		At:      time.Now(),
		Channel: "http",
	})
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Int64("user_id", req.UserID).Msg("turn failed")
		writeJSON(w, http.StatusOK, chatResponse{Response: core.FallbackReply})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": core.BotName + " API is running!",
		"version": core.Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// requestCtx carries the process logger into the turn while keeping the
// request's cancellation.
func (s *Server) requestCtx(r *http.Request) context.Context {
	if s.baseCtx == nil {
		return r.Context()
	}
	return log.FromCtx(s.baseCtx).WithContext(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
