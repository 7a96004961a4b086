package handlers

import (
	"errors"
	"io"
	"strconv"
	"time"

	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/alvaroquispe1998/email-generator/internal/app"
	"github.com/alvaroquispe1998/email-generator/internal/directory"
	"github.com/alvaroquispe1998/email-generator/internal/engine"
	"github.com/alvaroquispe1998/email-generator/internal/mapping"
	"github.com/alvaroquispe1998/email-generator/internal/metrics"
	"github.com/alvaroquispe1998/email-generator/internal/models"
	"github.com/alvaroquispe1998/email-generator/internal/roster"
)

const maxUploadBytes = 16 << 20

type SessionHandler struct {
	service  *app.Service
	registry *Registry
}

func NewSessionHandler(service *app.Service) *SessionHandler {
	return &SessionHandler{
		service:  service,
		registry: NewRegistry(),
	}
}

// HandleCreateSession takes a multipart roster upload and opens a session
// with the inferred mapping merged against stored prefs and config.
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	profile := r.URL.Query().Get("profile")
	if profile == "" {
		profile = "default"
	}

	if err := h.service.ValidateAuth(r, profile); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := readUpload(r, "roster")
	if err != nil {
		http.Error(w, "Missing roster file", http.StatusBadRequest)
		return
	}

	sheet, err := roster.Load(data)
	if err != nil {
		logger.Error.Printf("Failed to parse roster: %v", err)
		http.Error(w, "Failed to parse roster file", http.StatusUnprocessableEntity)
		return
	}

	sess := h.service.NewSession(sheet, profile)
	id := h.registry.Create(profile, sess)
	metrics.SessionsTotal.Inc()

	logger.Info.Printf("Session %s opened for profile %s: %d rows", id, profile, len(sheet.Rows))

	writeJSON(w, map[string]interface{}{
		"session_id": id,
		"rows":       len(sheet.Rows),
		"headers":    sheet.Headers,
		"mapping":    models.RuleSpecs(sess.Mapping),
	})
}

// HandleLoadDirectory loads the previously exported directory snapshot. A
// schema error still applies whatever columns were found; a read error
// leaves the session without a directory.
func (h *SessionHandler) HandleLoadDirectory(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(r, "directory")
	if err != nil {
		http.Error(w, "Missing directory file", http.StatusBadRequest)
		return
	}

	snap, loadErr := directory.Load(data)

	var readErr *directory.ReadError
	if errors.As(loadErr, &readErr) {
		logger.Error.Printf("Directory load failed: %v", loadErr)
		http.Error(w, loadErr.Error(), http.StatusUnprocessableEntity)
		return
	}

	_, ok := h.withSession(w, r, func(s engine.Session) engine.Session {
		return s.WithDirectory(snap)
	})
	if !ok {
		return
	}

	resp := map[string]interface{}{
		"dnis":   len(snap.DNIs),
		"emails": len(snap.Emails),
	}
	var schemaErr *directory.SchemaError
	if errors.As(loadErr, &schemaErr) {
		resp["missing_columns"] = schemaErr.Missing
	}
	writeJSON(w, resp)
}

func (h *SessionHandler) HandleGetMapping(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"headers": sess.Sheet.Headers,
		"mapping": models.RuleSpecs(sess.Mapping),
	})
}

func (h *SessionHandler) HandlePutMapping(w http.ResponseWriter, r *http.Request) {
	var update models.MappingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := update.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rules, err := update.ToMapping()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, ok := h.withSession(w, r, func(s engine.Session) engine.Session {
		return s.WithMapping(mapping.Merge(s.Mapping, rules))
	})
	if !ok {
		return
	}

	h.persistPrefs(r, sess)
	writeJSON(w, map[string]interface{}{
		"mapping": models.RuleSpecs(sess.Mapping),
	})
}

func (h *SessionHandler) HandleGetPolicy(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"policy": models.PolicyUpdate{
			DNI:     sess.Policy.DNI,
			Celular: sess.Policy.Celular,
			Codigo:  sess.Policy.Codigo,
		},
	})
}

func (h *SessionHandler) HandlePutPolicy(w http.ResponseWriter, r *http.Request) {
	var update models.PolicyUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess, ok := h.withSession(w, r, func(s engine.Session) engine.Session {
		return s.WithPolicy(engine.RequiredPolicy{
			DNI:     update.DNI,
			Celular: update.Celular,
			Codigo:  update.Codigo,
		})
	})
	if !ok {
		return
	}

	h.persistPrefs(r, sess)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleReport re-derives the full evaluation from the current state.
func (h *SessionHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		metrics.APIRequestDuration.WithLabelValues(
			r.URL.Path,
			r.Method,
			"200",
		).Observe(duration)
	}()

	sess, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	report := sess.Evaluate()
	metrics.RowsEvaluated.WithLabelValues("eligible").Add(float64(len(report.Eligible)))
	metrics.RowsEvaluated.WithLabelValues("invalid").Add(float64(len(report.Invalid)))
	metrics.RowsEvaluated.WithLabelValues("dni_match").Add(float64(len(report.DNIMatches)))
	metrics.RowsEvaluated.WithLabelValues("duplicate").Add(float64(report.DuplicateTally))

	writeJSON(w, map[string]interface{}{
		"total_rows":      len(report.Projected),
		"eligible_count":  len(report.Eligible),
		"invalid":         report.Invalid,
		"dni_matches":     report.DNIMatches,
		"conflicts":       report.Conflicts,
		"duplicate_tally": report.DuplicateTally,
	})
}

func (h *SessionHandler) HandlePutOverride(w http.ResponseWriter, r *http.Request) {
	rowNumber, err := strconv.Atoi(r.PathValue("row"))
	if err != nil {
		http.Error(w, "Invalid row number", http.StatusBadRequest)
		return
	}

	var req models.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, ok := h.withSession(w, r, func(s engine.Session) engine.Session {
		return s.WithOverride(rowNumber, req.Value)
	})
	if !ok {
		return
	}

	_, overridden := sess.Overrides[rowNumber]
	writeJSON(w, map[string]interface{}{
		"row":        rowNumber,
		"overridden": overridden,
	})
}

func (h *SessionHandler) HandleAlternates(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.withSession(w, r, func(s engine.Session) engine.Session {
		return s.WithAlternates()
	})
	if !ok {
		return
	}

	writeJSON(w, map[string]interface{}{
		"overrides": len(sess.Overrides),
	})
}

func (h *SessionHandler) HandleExportManifest(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	report := sess.Evaluate()
	chunks, err := h.service.Batcher().Batch(report.Eligible)
	if err != nil {
		logger.Error.Printf("Failed to build export: %v", err)
		http.Error(w, "Failed to build export", http.StatusInternalServerError)
		return
	}

	names := make([]string, len(chunks))
	for i, chunk := range chunks {
		names[i] = chunk.Name
	}
	writeJSON(w, map[string]interface{}{
		"chunks":         names,
		"eligible_count": len(report.Eligible),
	})
}

// HandleExportChunk serves one chunk as a CSV download; the browser fetches
// them one by one off the manifest.
func (h *SessionHandler) HandleExportChunk(w http.ResponseWriter, r *http.Request) {
	part, err := strconv.Atoi(r.PathValue("part"))
	if err != nil || part < 1 {
		http.Error(w, "Invalid chunk number", http.StatusBadRequest)
		return
	}

	sess, _, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	report := sess.Evaluate()
	chunks, err := h.service.Batcher().Batch(report.Eligible)
	if err != nil {
		logger.Error.Printf("Failed to build export: %v", err)
		http.Error(w, "Failed to build export", http.StatusInternalServerError)
		return
	}
	if part > len(chunks) {
		http.Error(w, "No such chunk", http.StatusNotFound)
		return
	}

	chunk := chunks[part-1]
	metrics.ExportChunkRows.Observe(float64(chunkRows(chunk.Data)))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+chunk.Name+"\"")
	w.Write(chunk.Data)
}

func (h *SessionHandler) snapshot(w http.ResponseWriter, r *http.Request) (engine.Session, string, bool) {
	id := r.PathValue("id")
	sess, profile, ok := h.registry.Snapshot(id)
	if !ok {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return engine.Session{}, "", false
	}

	if err := h.service.ValidateAuth(r, profile); err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return engine.Session{}, "", false
	}

	return sess, profile, true
}

func (h *SessionHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(engine.Session) engine.Session) (engine.Session, bool) {
	if _, _, ok := h.snapshot(w, r); !ok {
		return engine.Session{}, false
	}

	sess, ok := h.registry.Update(r.PathValue("id"), fn)
	if !ok {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return engine.Session{}, false
	}
	return sess, true
}

// persistPrefs saves mapping and policy for the next session. Best effort.
func (h *SessionHandler) persistPrefs(r *http.Request, sess engine.Session) {
	_, profile, ok := h.registry.Snapshot(r.PathValue("id"))
	if !ok {
		return
	}
	if err := h.service.SavePrefs(profile, sess); err != nil {
		logger.Debug.Printf("Failed to persist prefs for %s: %v", profile, err)
	}
}

func readUpload(r *http.Request, field string) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func writeJSON(w http.ResponseWriter, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func chunkRows(data []byte) int {
	rows := 0
	for _, b := range data {
		if b == '\n' {
			rows++
		}
	}
	// header line doesn't count
	if rows > 0 {
		rows--
	}
	return rows
}
