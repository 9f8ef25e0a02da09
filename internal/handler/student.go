package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
	"github.com/ydahmen/student-records/internal/service"
)

// StudentHandler serves the student CRUD, filtering, and marks endpoints.
// All routes behind it require authentication; the write routes are
// additionally behind the admin gate (see server routing).
type StudentHandler struct {
	students *service.StudentService
	logger   *slog.Logger
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(students *service.StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{students: students, logger: logger}
}

// filterFromQuery builds a StudentFilter from the request's query string.
// Shared by the list endpoint and the exports so "what you see is what you
// export" holds by construction.
func filterFromQuery(r *http.Request) repository.StudentFilter {
	q := r.URL.Query()

	order := repository.SortAsc
	if q.Get("sortOrder") == "desc" || q.Get("sortOrder") == "DESC" {
		order = repository.SortDesc
	}

	return repository.StudentFilter{
		Major:     q.Get("major"),
		Grade:     q.Get("grade"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: order,
	}
}

// identity pulls the caller's identity set by the auth middleware.
// Nil only if the route was misconfigured without RequireAuth.
func identity(r *http.Request) *auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

// HandleList returns the caller-visible students under the given filter.
//
// HTTP: GET /students?major=&grade=&search=&sortBy=&sortOrder=
func (h *StudentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context(), identity(r), filterFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, students)
}

// HandleGet returns one student.
//
// HTTP: GET /students/{id} — owner or admin
func (h *StudentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleCreate adds a student.
//
// HTTP: POST /students — admin only
func (h *StudentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid student JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	student, err := h.students.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// HandleUpdate replaces a student's profile fields.
//
// HTTP: PUT /students/{id} — admin only
func (h *StudentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	student, err := h.students.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// HandleDelete removes a student, cascading to their marks.
//
// HTTP: DELETE /students/{id} — admin only
func (h *StudentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "student deleted"})
}

// markResponse is a Mark plus its derived values. The derivation lives on
// the model; this is just the JSON shape the client tables render.
type markResponse struct {
	model.Mark
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// HandleListMarks returns a student's test marks with derived percentage
// and letter grade per mark.
//
// HTTP: GET /students/{id}/marks — owner or admin
func (h *StudentHandler) HandleListMarks(w http.ResponseWriter, r *http.Request) {
	marks, err := h.students.ListMarks(r.Context(), identity(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]markResponse, 0, len(marks))
	for _, m := range marks {
		out = append(out, markResponse{
			Mark:       m,
			Percentage: m.Percentage(),
			Grade:      m.Grade(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleAddMark records a test result.
//
// HTTP: POST /students/{id}/marks — admin only
func (h *StudentHandler) HandleAddMark(w http.ResponseWriter, r *http.Request) {
	var in service.MarkInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	mark, err := h.students.AddMark(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, markResponse{
		Mark:       *mark,
		Percentage: mark.Percentage(),
		Grade:      mark.Grade(),
	})
}

// HandleSubjects returns the distinct subject list across all marks.
//
// HTTP: GET /students/marks/subjects
func (h *StudentHandler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.students.Subjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}
