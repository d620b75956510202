package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/georgec/tidybloom/internal/handler"
	"github.com/georgec/tidybloom/internal/middleware"
	"github.com/georgec/tidybloom/internal/store"
	ws "github.com/georgec/tidybloom/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	userH       *handler.UserHandler
	taskH       *handler.TaskHandler
	assignmentH *handler.AssignmentHandler
	goalH       *handler.GoalHandler
	plantH      *handler.PlantHandler
	xpH         *handler.XPHandler
	jwtSecret   []byte
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, jwtSecret []byte, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	goalStore := store.NewGoalStore(db)
	plantStore := store.NewPlantStore(db)
	xpStore := store.NewXPStore(db)
	stageStore := store.NewStageStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		userH:       handler.NewUserHandler(userStore, plantStore, assignmentStore, hub, logger.With("component", "user")),
		taskH:       handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		assignmentH: handler.NewAssignmentHandler(assignmentStore, userStore, taskStore, goalStore, hub, logger.With("component", "assignment")),
		goalH:       handler.NewGoalHandler(goalStore, userStore, hub, logger.With("component", "goal")),
		plantH:      handler.NewPlantHandler(plantStore, userStore, hub, logger.With("component", "plant")),
		xpH:         handler.NewXPHandler(xpStore, userStore, stageStore, logger.With("component", "xp")),
		jwtSecret:   jwtSecret,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Hub returns the websocket hub for cleanup and tests.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter so main can run its cleanup loop.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /api/users", s.rateLimitedHandler(s.userH.Create))

	// Everything else requires a verified bearer token
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.jwtSecret)
	outerMux.Handle("/", authMiddleware(protectedMux))

	h := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return middleware.RequestID(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// User routes
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("DELETE /api/users/{id}", s.userH.Delete)

	// Task catalog routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("GET /api/tasks/room/{room}", s.taskH.ListByRoom)

	// Assignment routes
	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("GET /api/users/{id}/assignments", s.assignmentH.ListByUser)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.Complete)
	mux.HandleFunc("POST /api/assignments/{id}/uncomplete", s.assignmentH.Uncomplete)
	mux.HandleFunc("DELETE /api/users/{id}/assignments", s.assignmentH.DeleteAllForUser)

	// Category goal routes
	mux.HandleFunc("GET /api/goals", s.goalH.List)
	mux.HandleFunc("GET /api/goals/{id}", s.goalH.Get)
	mux.HandleFunc("PUT /api/goals/{id}", s.goalH.Update)
	mux.HandleFunc("POST /api/users/{id}/goals/check", s.goalH.CheckProgress)

	// XP and progression routes
	mux.HandleFunc("GET /api/users/{id}/xp", s.xpH.TotalXP)
	mux.HandleFunc("GET /api/users/{id}/progress", s.xpH.Progress)
	mux.HandleFunc("GET /api/users/{id}/xp-events", s.xpH.ListEvents)
	mux.HandleFunc("GET /api/stages", s.xpH.ListStages)

	// Plant routes
	mux.HandleFunc("GET /api/plants", s.plantH.List)
	mux.HandleFunc("POST /api/plants", s.plantH.Create)
	mux.HandleFunc("GET /api/plants/{id}", s.plantH.Get)
	mux.HandleFunc("PUT /api/plants/{id}", s.plantH.Update)
	mux.HandleFunc("DELETE /api/plants/{id}", s.plantH.Delete)
	mux.HandleFunc("GET /api/users/{id}/plant", s.plantH.GetForUser)

	// Realtime sync
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}
