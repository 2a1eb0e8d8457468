package server

import (
	"errors"
	"net/http"
	"net/http/pprof"

	"warplanes-server/internal/domain"
	"warplanes-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug/matches", enableCORS(h.handleListMatches))
	mux.HandleFunc("GET /debug/matches/{id}", enableCORS(h.handleDumpMatch))

	// Профилирование. Свой mux, поэтому регистрируем руками.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// /debug/matches - сводки всех живых матчей
func (h *DebugHandler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Summaries(r.Context()))
}

// matchDump - полные поля обеих сторон без маски. Только для отладки.
type matchDump struct {
	Summary domain.Summary             `json:"summary"`
	Boards  map[domain.Side][][]string `json:"boards"`
}

// /debug/matches/{id} - сводка и открытые поля
func (h *DebugHandler) handleDumpMatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sum, err := h.Service.Summary(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}

	dump := matchDump{Summary: sum, Boards: make(map[domain.Side][][]string)}
	for _, side := range domain.Sides {
		// Сторона, которая еще не вошла, просто пропускается
		if snap, err := h.Service.Snapshot(r.Context(), id, side); err == nil {
			dump.Boards[side] = snap.OwnBoard.Strings()
		}
	}
	writeJSON(w, http.StatusOK, dump)
}
