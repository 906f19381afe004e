// Package api - HTTP handlers for capacity estimation
// Handlers decode input, call the estimator and serialize the result.
// All calculation logic lives in the core packages.
package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/estimate"
	"hotel-capacity/core/output"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
)

const maxBodyBytes = 1 << 20

// handleCalculate handles POST /calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	form := estimate.DefaultManualForm()
	body, err := s.readBody(r, calculateSchemaLoader, &form)
	if err != nil {
		s.writeError(w, err)
		return
	}

	est, err := s.estimator.Manual(form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondEstimate(w, r, body, est)
}

// handleListSites handles GET /sites
func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	if s.dataset == nil {
		s.writeError(w, errNoDataset)
		return
	}
	names := s.dataset.Names()
	s.writeJSON(w, &SitesResponse{
		Source:     s.dataset.Source(),
		Count:      len(names),
		Sites:      names,
		Duplicates: s.dataset.Duplicates(),
	}, http.StatusOK)
}

// handleGetSite handles GET /sites/{name}
func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	if s.dataset == nil {
		s.writeError(w, errNoDataset)
		return
	}
	rec, err := s.dataset.Resolve(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, &SiteResponse{Record: rec, NeedsLandArea: site.NeedsLandArea(rec)}, http.StatusOK)
}

// handleSiteEstimate handles POST /sites/{name}/estimate
func (s *Server) handleSiteEstimate(w http.ResponseWriter, r *http.Request) {
	var req SiteEstimateRequest
	body, err := s.readBody(r, siteEstimateSchemaLoader, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	est, err := s.estimator.Site(s.dataset, req.Form(r.PathValue("name")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondEstimate(w, r, body, est)
}

// handleSiteReport handles GET /sites/{name}/report. The form is read from
// the query string and the text report is returned as a download.
func (s *Server) handleSiteReport(w http.ResponseWriter, r *http.Request) {
	req, err := siteRequestFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	est, err := s.estimator.Site(s.dataset, req.Form(r.PathValue("name")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := (output.TextFormatter{}).Render(&buf, est); err != nil {
		s.writeError(w, errors.Internal("failed to render report", err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.ReportFilename(est)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleSitePreview handles GET /sites/{name}/preview
func (s *Server) handleSitePreview(w http.ResponseWriter, r *http.Request) {
	if s.dataset == nil {
		s.writeError(w, errNoDataset)
		return
	}
	preview, err := s.dataset.Preview(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	fc := preview.FeatureCollection()
	fc.ExtraMembers = map[string]interface{}{
		"center":            preview.Center,
		"geodesic_area_sqm": preview.GeodesicAreaSqm,
	}
	w.Header().Set("Content-Type", "application/geo+json")
	s.writeJSON(w, fc, http.StatusOK)
}

// handleLastResult handles GET /sessions/{id}/last
func (s *Server) handleLastResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	est, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if est == nil {
		s.writeError(w, errors.NotFound("session result", id))
		return
	}
	s.writeJSON(w, est, http.StatusOK)
}

// handleDropSession handles DELETE /sessions/{id}
func (s *Server) handleDropSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Drop(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sites := 0
	status := "healthy"
	if s.dataset != nil {
		sites = len(s.dataset.Names())
	} else {
		status = "degraded"
	}
	s.writeJSON(w, map[string]interface{}{
		"status":  status,
		"version": s.version,
		"sites":   sites,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "hotel-capacity",
		"api_version": "v1",
	}, http.StatusOK)
}

var errNoDataset = errors.DataSource("no site dataset is loaded", nil)

// readBody reads a JSON body, checks it against schema and decodes it over
// target. An empty body leaves target untouched.
func (s *Server) readBody(r *http.Request, schema gojsonschema.JSONLoader, target interface{}) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.Validation("", "failed to read request body: "+err.Error())
	}
	if len(body) > maxBodyBytes {
		return nil, errors.Validation("", "request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return body, nil
	}

	if err := validateBody(schema, body); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "invalid request body", err)
	}
	return body, nil
}

// respondEstimate stores est as the session's last result when the request
// names a session, then writes the estimate response.
func (s *Server) respondEstimate(w http.ResponseWriter, r *http.Request, body []byte, est *estimate.Estimate) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID != "" {
		if err := s.sessions.Put(r.Context(), sessionID, est); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.writeJSON(w, &EstimateResponse{
		RequestID: generateRequestID(),
		Timestamp: time.Now().UTC(),
		InputHash: computeInputHash(r.URL.Path, body),
		SessionID: sessionID,
		Estimate:  est,
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	detail := ErrorDetail{Code: string(errors.TypeInternal), Message: err.Error()}
	if de, ok := errors.As(err); ok {
		detail.Code = string(de.Type)
		detail.Field = de.Field
		detail.Message = de.Message
		if de.Cause != nil {
			detail.Message += ": " + de.Cause.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", detail.Code), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("code", detail.Code), zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, &ErrorResponse{Error: detail}, status)
}

// statusFor maps an error's type to an HTTP status
func statusFor(err error) int {
	de, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch de.Type {
	case errors.TypeValidation, errors.TypeMissingInput:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeDataSource:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func siteRequestFromQuery(r *http.Request) (SiteEstimateRequest, error) {
	var req SiteEstimateRequest
	q := r.URL.Query()

	for key, dst := range map[string]**float64{
		site.FieldLandAreaOverride:     &req.LandAreaOverrideSqm,
		capacity.FieldEfficiencyFactor: &req.EfficiencyFactor,
		capacity.FieldAvgRoomSize:      &req.AvgRoomSizeSqm,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, errors.Validationf(key, "%q is not a number", raw)
		}
		*dst = &v
	}
	return req, nil
}

func computeInputHash(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(bytes.TrimSpace(body))
	return hex.EncodeToString(h.Sum(nil))
}

func generateRequestID() string {
	return fmt.Sprintf("cap-%d", time.Now().UnixNano())
}
