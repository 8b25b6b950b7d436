package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jobportal/aggregator/internal/core"
	"github.com/jobportal/aggregator/internal/store"
)

// Runner triggers one aggregation run.
type Runner interface {
	Run(ctx context.Context) core.Report
}

// JobLister is the read side of the store the API serves.
type JobLister interface {
	ListJobs(ctx context.Context, limit, offset int) ([]store.Job, int64, error)
}

type Server struct {
	router *chi.Mux
	jobs   JobLister
	runner Runner
}

func NewServer(jobs JobLister, runner Runner) *Server {
	s := &Server{
		router: chi.NewRouter(),
		jobs:   jobs,
		runner: runner,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/jobs", s.handleListJobs)
	s.router.Post("/scraper/run", s.handleRunScraper)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
