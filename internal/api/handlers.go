package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"courseprogress/internal/report"
	"courseprogress/internal/tracker"
)

const Version = "0.1.0"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Reporter runs the report pipeline. *tracker.Service implements it.
type Reporter interface {
	Summarize(ctx context.Context, root string) (*report.Model, error)
	Generate(ctx context.Context, root, output string) (*report.Model, error)
	WriteWorkbook(ctx context.Context, root string, w io.Writer) (*report.Model, error)
	IsRunning() bool
}

type Handler struct {
	reporter Reporter
	logger   zerolog.Logger
	root     string
	output   string
}

func NewHandler(reporter Reporter, logger zerolog.Logger, root, output string) *Handler {
	return &Handler{
		reporter: reporter,
		logger:   logger,
		root:     root,
		output:   output,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Busy:    h.reporter.IsRunning(),
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	m, err := h.reporter.Summarize(r.Context(), h.root)
	if err != nil {
		h.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(h.root, m))
}

// DownloadWorkbook renders the workbook in memory so a failed run can still
// answer with a JSON error.
func (h *Handler) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.reporter.WriteWorkbook(r.Context(), h.root, &buf); err != nil {
		h.writeRunError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(h.output)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug().Err(err).Msg("workbook download interrupted")
	}
}

func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	m, err := h.reporter.Generate(r.Context(), h.root, h.output)
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	resp := GenerateResponse{
		Status: "created",
		Output: h.output,
		Items:  len(m.Rows),
		Total:  report.HoursMinutes(m.TotalMinutes),
	}
	if info, err := os.Stat(h.output); err == nil {
		resp.Size = humanize.Bytes(uint64(info.Size()))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrScanInProgress):
		writeError(w, http.StatusConflict, "CONFLICT", "A report run is already in progress")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "CANCELLED", "Request cancelled")
	default:
		h.logger.Error().Err(err).Str("root", h.root).Msg("report run failed")
		writeError(w, http.StatusInternalServerError, "REPORT_FAILED", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
