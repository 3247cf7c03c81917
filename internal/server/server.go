package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/admin-cost/internal/batch"
	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/iwvelando/admin-cost/pkg/output"
	"github.com/iwvelando/admin-cost/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	calc          *estimate.Calculator
}

// NewHandler constructs the HTTP handler that serves the web UI and estimate API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		calc:          estimate.NewCalculator(nil),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/rates", h.handleRates)
		r.Get("/rates/{kind}", h.handleRatesKind)

		// Whole run as JSON, or as an uploaded YAML run file
		r.Post("/estimate", h.handleEstimate)
		r.Post("/estimate/upload", h.handleEstimateUpload)

		// Single site, used by the wizard page after each step
		r.Post("/compute", h.handleCompute)

		// Run file serialization for downloads
		r.Post("/export", h.handleExport)
	})

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type estimateResponse struct {
	output.Summary
	Warnings []string `json:"warnings,omitempty"`
	Duration string   `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
	Site  string `json:"site,omitempty"`
}

type computeRequest struct {
	Project          config.ProjectConfig    `json:"project"`
	HasExistingStudy *bool                   `json:"hasExistingStudy,omitempty"`
	Reduction        config.Number           `json:"reduction"`
	Reductions       config.ReductionsConfig `json:"reductions"`
	Locale           string                  `json:"locale,omitempty"`
	CurrencySymbol   string                  `json:"currencySymbol,omitempty"`
}

type computeResponse struct {
	RunID        string                    `json:"runId"`
	ProjectCost  decimal.Decimal           `json:"projectCost"`
	CostMillions decimal.Decimal           `json:"projectCostMillions"`
	Breakdown    output.BreakdownSummary   `json:"breakdown"`
	Formatted    output.FormattedBreakdown `json:"formatted"`
}

type rateTableResponse struct {
	Kind     string               `json:"kind"`
	Brackets []string             `json:"brackets"`
	Rows     map[string][]*string `json:"rows"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleRates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]rateTableResponse{
		rates.KindStudy.String():      h.rateTable(rates.KindStudy),
		rates.KindMonitoring.String(): h.rateTable(rates.KindMonitoring),
	})
}

func (h *handler) handleRatesKind(w http.ResponseWriter, r *http.Request) {
	kind, err := rates.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), "", "server.handleRatesKind")
		return
	}
	h.writeJSON(w, http.StatusOK, h.rateTable(kind))
}

// rateTable renders one kind; undefined cells are null.
func (h *handler) rateTable(kind rates.Kind) rateTableResponse {
	table := h.calc.Table()
	resp := rateTableResponse{Kind: kind.String(), Rows: make(map[string][]*string)}
	for _, b := range table.Brackets() {
		resp.Brackets = append(resp.Brackets, b.String())
	}
	for _, row := range table.Rows(kind) {
		cells := make([]*string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell.Defined {
				v := cell.String()
				cells[i] = &v
			}
		}
		resp.Rows[string(row.Category)] = cells
	}
	return resp
}

func (h *handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEstimate"
	var conf config.Configuration
	if !h.decodeJSON(w, r, &conf, op) {
		return
	}
	h.runEstimate(w, &conf, op)
}

func (h *handler) handleEstimateUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEstimateUpload"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "", op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "", op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing run file", "", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read run file: %v", err), "", op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "", op)
		return
	}
	h.runEstimate(w, conf, op)
}

func (h *handler) runEstimate(w http.ResponseWriter, conf *config.Configuration, op string) {
	result, err := batch.Run(h.logger, conf, batch.Options{Calculator: h.calc})
	if err != nil {
		h.respondRunError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, estimateResponse{
		Summary:  output.NewSummary(result.Report()),
		Warnings: result.Warnings,
		Duration: result.Duration.String(),
	})
}

func (h *handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompute"
	var req computeRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	formatter, err := format.NewFormatter(req.Locale, req.CurrencySymbol)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "", op)
		return
	}
	project, err := req.Project.ToProject()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "", op)
		return
	}

	// A bare reduction applies as is; the site form sends its three
	// reductions together with the existing study flag.
	reduction := req.Reduction
	if req.HasExistingStudy != nil {
		reduction = 0
		if *req.HasExistingStudy {
			reduction = req.Reductions.Execution
		}
	}
	if err := validation.ValidatePercent("reduction", float64(reduction)); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "", op)
		return
	}

	b, err := h.calc.ComputeProject(project, decimal.NewFromFloat(float64(reduction)))
	if err != nil {
		h.respondRunError(w, err, op)
		return
	}

	report := output.Report{Table: h.calc.Table(), Formatter: formatter}
	h.writeJSON(w, http.StatusOK, computeResponse{
		RunID:        uuid.New().String(),
		ProjectCost:  project.Cost(),
		CostMillions: project.CostMillions(),
		Breakdown:    report.SummarizeBreakdown(b),
		Formatted:    output.FormatBreakdown(b, report),
	})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	var conf config.Configuration
	if !h.decodeJSON(w, r, &conf, op) {
		return
	}

	yamlBytes, err := yaml.Marshal(&conf)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode run file: %v", err), "", op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"yaml": string(yamlBytes),
	})
}

// decodeJSON reads a size-limited JSON body into dst, answering the request
// itself when that fails.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), "", op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), "", op)
		return false
	}
	return true
}

// respondRunError maps invalid input to 400 and pricing failures to 422.
func (h *handler) respondRunError(w http.ResponseWriter, err error, op string) {
	site := ""
	var siteErr *batch.SiteError
	if errors.As(err, &siteErr) {
		site = siteErr.Site
	}

	switch {
	case errors.Is(err, batch.ErrInvalidInput):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), site, op)
	case errors.Is(err, rates.ErrNoRate):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), site, op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), site, op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, site string, op string) {
	h.logger.Error("estimate request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("site", site),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg, Site: site})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
