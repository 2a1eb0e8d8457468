package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"warplanes-server/internal/agent"
	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine"
	"warplanes-server/internal/engine/handlers"
	"warplanes-server/internal/version"
	"warplanes-server/pkg/logger"
)

type Server struct {
	Engine *engine.GameService
	Addr   string

	// botCtx живет, пока живет сервер. Боты матчей останавливаются вместе с ним.
	botCtx context.Context
}

func New(engine *engine.GameService, addr string) *Server {
	return &Server{
		Engine: engine,
		Addr:   addr,
		botCtx: context.Background(),
	}
}

// Handler собирает роутер. Отдельно от Run, чтобы тесты могли поднять httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", enableCORS(s.handleHealth))
	mux.HandleFunc("GET /version", enableCORS(s.handleVersion))
	mux.HandleFunc("POST /game/create", enableCORS(s.handleCreate))
	mux.HandleFunc("GET /game/{id}", enableCORS(s.handleGame))
	mux.HandleFunc("GET /ws/{id}", s.handleWS)

	NewDebugHandler(s.Engine).RegisterRoutes(mux)
	return mux
}

// Run запускает HTTP сервер и останавливает его по отмене ctx.
func (s *Server) Run(ctx context.Context) error {
	s.botCtx = ctx
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("✈️  Warplanes server running on %s", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

type createRequest struct {
	VsBot bool `json:"vsBot"`
}

type createResponse struct {
	GameID string `json:"gameId"`
}

// handleCreate - POST /game/create. Тело необязательно.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, handlers.ErrBadPayload)
		return
	}

	id := s.Engine.CreateMatch()
	if req.VsBot {
		if _, err := agent.Start(s.botCtx, s.Engine, id, time.Now().UnixNano()); err != nil {
			logger.Log.WithError(err).WithField("match", id).Error("Failed to start bot")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	logger.Log.WithFields(logrus.Fields{"match": id, "vs_bot": req.VsBot}).Info("Game created over HTTP")
	writeJSON(w, http.StatusOK, createResponse{GameID: id})
}

// handleGame - GET /game/{id}
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Engine.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleWS обрабатывает подключение по WebSocket: /ws/{id}?side=player2&token=...
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("Upgrade error")
		return
	}

	client := NewClient(s.Engine, conn, r.PathValue("id"))
	query := r.URL.Query()
	// Контекст запроса после апгрейда не отменяется, поэтому берем контекст сервера
	if err := client.handshake(s.botCtx, query.Get("side"), query.Get("token")); err != nil {
		return
	}

	// Запускаем пампы
	go client.forward()
	go client.writePump()
	go client.readPump(s.botCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Log.WithError(err).Debug("health write failed")
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Info())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, handlers.ErrorMessage(err))
}
