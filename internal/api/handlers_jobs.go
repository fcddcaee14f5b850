package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/adocgest/internal/pipeline"
)

type jobDocument struct {
	Name       string            `json:"name"`
	Source     string            `json:"source"`
	Attributes map[string]string `json:"attributes"`
	Legacy     bool              `json:"legacy"`
}

type jobsRequest struct {
	Documents []jobDocument `json:"documents"`
}

func (s *Server) handleSubmitJobs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10)

	var req jobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		jsonError(w, "at least one document is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(req.Documents))
	for _, d := range req.Documents {
		name := sanitizeName(d.Name)
		if int64(len(d.Source)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"name":  name,
				"error": fmt.Sprintf("document exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
			})
			continue
		}

		job := pipeline.NewJob(name, d.Source, d.Attributes, d.Legacy || s.cfg.LegacySyntax)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"name":  name,
				"error": err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"name":     name,
			"job_id":   job.ID,
			"status":   job.Snapshot().Status,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleJobHTML(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	res := job.Result()
	if res == nil {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			jsonError(w, strings.Join(snap.Errors, "; "), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "job not finished: "+string(snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, res.HTML)
}

func sanitizeName(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "." || name == "/" {
		name = ""
	}
	return name
}
