package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/export"
	"github.com/ydahmen/student-records/internal/service"
)

// ExportHandler serves the CSV/PDF downloads and the statistics endpoint.
//
// Exports go through the exact same service path as GET /students: the
// caller's identity and query filters are applied before a single byte is
// rendered, so a student exporting data never sees another student's row.
type ExportHandler struct {
	students *service.StudentService
	logger   *slog.Logger
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(students *service.StudentService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{students: students, logger: logger}
}

// HandleExportCSV streams the caller-visible, filtered student set as a
// CSV attachment.
//
// HTTP: GET /students/export/csv
func (h *ExportHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context(), identity(r), filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	// Render to a buffer first: if rendering fails the client gets a clean
	// JSON error instead of a truncated file.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, students); err != nil {
		h.logger.Error("CSV export failed", slog.String("error", err.Error()))
		writeError(w, apperror.ExportFailed(err))
		return
	}

	filename := fmt.Sprintf("students-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HandleExportPDF streams the caller-visible, filtered student set as a
// PDF report attachment.
//
// HTTP: GET /students/export/pdf
func (h *ExportHandler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	students, err := h.students.List(r.Context(), identity(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	summary := export.FilterSummary{
		Search: filter.Search,
		Major:  filter.Major,
		Grade:  filter.Grade,
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, students, summary, time.Now()); err != nil {
		h.logger.Error("PDF export failed", slog.String("error", err.Error()))
		writeError(w, apperror.ExportFailed(err))
		return
	}

	filename := fmt.Sprintf("students-report-%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HandleStatistics returns the aggregate counts for the caller-visible,
// filtered set as JSON — the same numbers the PDF's summary page shows.
//
// HTTP: GET /students/export/statistics
func (h *ExportHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.students.Statistics(r.Context(), identity(r), filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
