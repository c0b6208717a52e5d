package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/antoniopresto/wasm-validator/internal/boundary"
	"github.com/antoniopresto/wasm-validator/internal/diagnostics"
	"github.com/antoniopresto/wasm-validator/internal/registry"
)

// SchemaResponse is returned when a schema has been compiled.
type SchemaResponse struct {
	ID registry.Key `json:"id"`
}

// CodesResponse lists every issue code.
type CodesResponse struct {
	Codes []diagnostics.Code `json:"codes"`
}

// handleValidate compiles the request's schema and validates its instance.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, err := boundary.DecodeRequest(body)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	schema, instance, err := req.Documents()
	if err != nil {
		s.badRequest(w, err)
		return
	}

	start := time.Now()
	err = diagnostics.Validate(schema, instance, req.Options(s.opts...)...)
	s.metrics.ObserveValidation(start, err)
	s.respond(w, err)
}

// handleCompile compiles the body as a schema and keeps it for later use.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	schema, err := boundary.DecodeJSON(boundary.SubjectSchema, body)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	id, _, err := s.schemas.Add(schema)
	if err != nil {
		if _, ok := diagnostics.AsIssues(err); ok {
			s.respond(w, err)
			return
		}
		s.badRequest(w, &boundary.DeserializationError{Subject: boundary.SubjectSchema, Err: err})
		return
	}
	s.logger.Debug("Compiled schema", "id", id)
	s.writeJSON(w, http.StatusOK, SchemaResponse{ID: id})
}

// handleValidateByID validates the body's instance against a schema compiled
// earlier.
func (s *Server) handleValidateByID(w http.ResponseWriter, r *http.Request) {
	v, err := s.schemas.MustGet(registry.Key(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	req, instance, err := boundary.DecodeInstanceRequest(body)
	if err != nil {
		s.badRequest(w, err)
		return
	}
	if req.MaskValues != nil {
		v = v.WithMaskValues(*req.MaskValues)
	}

	start := time.Now()
	err = v.Validate(instance)
	s.metrics.ObserveValidation(start, err)
	s.respond(w, err)
}

func (s *Server) handleCodes(w http.ResponseWriter, _ *http.Request) {
	codes := append(diagnostics.AllCodes(), diagnostics.CodeInvalidSchema)
	s.writeJSON(w, http.StatusOK, CodesResponse{Codes: codes})
}

// readBody reads the request body within the configured limit. It writes the
// error response itself and reports false on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	limit := s.cfg.MaxBodyBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	body, err := io.ReadAll(r.Body)
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.metrics.ObserveError()
		s.writeError(w, http.StatusRequestEntityTooLarge, &BodyTooLargeError{Limit: limit})
		return nil, false
	}
	s.badRequest(w, &boundary.DeserializationError{Subject: boundary.SubjectRequest, Err: err})
	return nil, false
}

func (s *Server) respond(w http.ResponseWriter, result error) {
	resp, err := boundary.NewResponse(result)
	if err != nil {
		s.logger.Error("Validation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.metrics.ObserveError()
	s.logger.Debug("Rejected request", "error", err)
	s.writeError(w, http.StatusBadRequest, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(boundary.EncodeError(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.MarshalNoEscape(v)
	if err != nil {
		s.logger.Error("Cannot encode response", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
