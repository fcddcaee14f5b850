package api

import (
	"encoding/json"
	"errors"
	"io"
	"maps"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/adocgest/internal/convert"
)

type convertRequest struct {
	Source     string            `json:"source"`
	Attributes map[string]string `json:"attributes"`
	Legacy     bool              `json:"legacy"`
}

type convertResponse struct {
	HTML       string            `json:"html"`
	Attributes map[string]string `json:"attributes"`
	Title      string            `json:"title"`
}

// handleConvert converts the request body synchronously. The body is either
// the document itself or a JSON convertRequest.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	req, err := s.readConvertRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "document exceeds max size ("+strconv.FormatInt(s.cfg.MaxUploadBytes, 10)+" bytes)", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := s.orchestrator.Converter().Convert(r.Context(), req.Source, convert.Options{
		Attributes: s.attributes(req.Attributes),
		Legacy:     req.Legacy || s.cfg.LegacySyntax,
	})
	s.orchestrator.RecordConversion(time.Since(start), err)
	if err != nil {
		if errors.Is(err, convert.ErrCannotParse) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("conversion failed", "error", err)
		jsonError(w, "conversion failed", http.StatusInternalServerError)
		return
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, doc.HTML())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(convertResponse{
		HTML:       doc.HTML(),
		Attributes: doc.Attributes(),
		Title:      doc.Title(),
	})
}

func (s *Server) readConvertRequest(r *http.Request) (convertRequest, error) {
	var req convertRequest
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return req, err
	}
	req.Source = string(data)
	req.Legacy, _ = strconv.ParseBool(r.URL.Query().Get("legacy"))
	return req, nil
}

// attributes layers request attributes over the configured defaults.
func (s *Server) attributes(req map[string]string) map[string]string {
	attrs := maps.Clone(s.cfg.Attributes)
	if attrs == nil {
		attrs = make(map[string]string, len(req))
	}
	maps.Copy(attrs, req)
	return attrs
}

func wantsHTML(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := mime.ParseMediaType(strings.TrimSpace(part))
		if mt == "text/html" {
			return true
		}
	}
	return false
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
