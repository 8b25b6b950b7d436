package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jobportal/aggregator/internal/observability"
	"github.com/jobportal/aggregator/internal/store"
)

func (s *Server) handleRunScraper(w http.ResponseWriter, r *http.Request) {
	report := s.runner.Run(r.Context())
	if !report.Success {
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Import failed",
			"error":   report.Err,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Successfully imported %d jobs from multiple sources!", report.Count),
		"count":    report.Count,
		"inserted": report.Inserted,
		"skipped":  report.Skipped,
	})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	jobs, total, err := s.jobs.ListJobs(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch jobs: "+err.Error())
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  jobs,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 || limit > 200 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
