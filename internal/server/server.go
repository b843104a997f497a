package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorewheel/internal/handler"
	"github.com/dukerupert/chorewheel/internal/middleware"
	"github.com/dukerupert/chorewheel/internal/rotation"
	ws "github.com/dukerupert/chorewheel/internal/websocket"
)

// Options tunes the HTTP surface.
type Options struct {
	RequestTimeout time.Duration
	RatePerSec     float64
	RateBurst      int
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	residentH   *handler.ResidentHandler
	taskH       *handler.TaskHandler
	holidayH    *handler.HolidayHandler
	historyH    *handler.HistoryHandler
	rateLimiter *middleware.RateLimiter
	opts        Options
	logger      *slog.Logger
}

func New(db *sql.DB, svc *rotation.Service, hub *ws.Hub, opts Options, logger *slog.Logger) *Server {
	return &Server{
		db:          db,
		hub:         hub,
		residentH:   handler.NewResidentHandler(svc, hub, logger.With("component", "resident")),
		taskH:       handler.NewTaskHandler(svc, hub, logger.With("component", "task")),
		holidayH:    handler.NewHolidayHandler(svc, hub, logger.With("component", "holiday")),
		historyH:    handler.NewHistoryHandler(svc, logger.With("component", "history")),
		rateLimiter: middleware.NewRateLimiter(opts.RatePerSec, opts.RateBurst),
		opts:        opts,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)

	keyFunc := func(r *http.Request) string { return middleware.RealIP(r) }
	api := middleware.RateLimit(s.rateLimiter, keyFunc)(middleware.Timeout(s.opts.RequestTimeout)(apiMux))
	outerMux.Handle("/api/", api)

	return middleware.RequestID(middleware.RequestLogger(s.logger.With("component", "http"))(outerMux))
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Residents
	mux.HandleFunc("GET /api/residents", s.residentH.List)
	mux.HandleFunc("POST /api/residents", s.residentH.Create)
	mux.HandleFunc("GET /api/residents/active", s.residentH.Active)
	mux.HandleFunc("PUT /api/residents/order", s.residentH.Reorder)
	mux.HandleFunc("DELETE /api/residents/{id}", s.residentH.Delete)
	mux.HandleFunc("POST /api/residents/{id}/move", s.residentH.Move)
	mux.HandleFunc("GET /api/residents/{id}/due", s.residentH.Due)

	// Trips
	mux.HandleFunc("POST /api/residents/{id}/trips", s.residentH.StartTrip)
	mux.HandleFunc("GET /api/residents/{id}/trips", s.residentH.ListTrips)
	mux.HandleFunc("POST /api/trips/{id}/return", s.residentH.RegisterReturn)

	// Tasks
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/execute", s.taskH.Execute)
	mux.HandleFunc("POST /api/tasks/{id}/reassign", s.taskH.Reassign)
	mux.HandleFunc("POST /api/tasks/{id}/pause", s.taskH.TogglePause)

	// Holidays
	mux.HandleFunc("GET /api/tasks/{id}/holidays", s.holidayH.List)
	mux.HandleFunc("POST /api/tasks/{id}/holidays", s.holidayH.Create)
	mux.HandleFunc("DELETE /api/holidays/{id}", s.holidayH.Delete)

	// History
	mux.HandleFunc("GET /api/tasks/{id}/history", s.historyH.Task)
	mux.HandleFunc("GET /api/history/recent", s.historyH.Recent)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "clients": s.hub.ClientCount()}
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check: database unreachable", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}
