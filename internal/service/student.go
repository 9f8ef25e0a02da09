package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/export"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

const (
	MaxNameLength  = 100
	MaxMajorLength = 100
	MinAge         = 1
	MaxAge         = 150
)

// StudentService handles business logic for student profiles and marks.
//
// Every read path takes the caller's identity and applies row-level
// isolation before the repository sees the query: a student-role caller can
// only ever reach their own row, no matter what filters they supply. Write
// paths assume the admin gate already ran in the middleware but the
// ownership rules here are enforced regardless.
type StudentService struct {
	students repository.StudentRepository
	marks    repository.MarkRepository
	logger   *slog.Logger
}

// NewStudentService creates a StudentService.
func NewStudentService(
	students repository.StudentRepository,
	marks repository.MarkRepository,
	logger *slog.Logger,
) *StudentService {
	return &StudentService{
		students: students,
		marks:    marks,
		logger:   logger,
	}
}

// List returns the students visible to the caller under the given filter.
func (s *StudentService) List(ctx context.Context, identity *auth.Identity, filter repository.StudentFilter) ([]model.Student, error) {
	filter, visible := s.restrict(identity, filter)
	if !visible {
		// Student account with no linked profile (their row was deleted):
		// their visible set is empty, not an error.
		return []model.Student{}, nil
	}

	students, err := s.students.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list students", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing students: %w", err)
	}

	return students, nil
}

// Get returns one student. Admins can fetch anyone; a student-role caller
// only their own row.
func (s *StudentService) Get(ctx context.Context, identity *auth.Identity, id string) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "student ID is required")
	}
	if err := s.checkOwnership(identity, id); err != nil {
		return nil, err
	}

	return s.students.GetByID(ctx, id)
}

// StudentInput carries the profile fields for create and update.
type StudentInput struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Major string `json:"major"`
	Grade string `json:"grade"`
}

func (in *StudentInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Major = strings.TrimSpace(in.Major)
	in.Grade = strings.ToUpper(strings.TrimSpace(in.Grade))

	if in.Name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if len(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if in.Age < MinAge || in.Age > MaxAge {
		return apperror.ValidationFailed("age",
			fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge))
	}
	if in.Major == "" {
		return apperror.ValidationFailed("major", "major is required")
	}
	if len(in.Major) > MaxMajorLength {
		return apperror.ValidationFailed("major",
			fmt.Sprintf("major must be %d characters or less", MaxMajorLength))
	}
	if !model.ValidGrade(in.Grade) {
		return apperror.ValidationFailed("grade", "grade must be one of A, B, C, D, F")
	}
	return nil
}

// Create adds a new student profile (admin operation). The generated
// STU-XXXXXX identifier is returned on the created row.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*model.Student, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	id, err := auth.NewStudentID()
	if err != nil {
		return nil, fmt.Errorf("creating student: %w", err)
	}

	student := &model.Student{
		ID:    id,
		Name:  in.Name,
		Age:   in.Age,
		Major: in.Major,
		Grade: in.Grade,
	}
	if err := s.students.Create(ctx, student); err != nil {
		s.logger.Error("failed to create student",
			slog.String("name", in.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating student: %w", err)
	}

	s.logger.Info("student created",
		slog.String("id", student.ID),
		slog.String("name", student.Name),
	)

	return student, nil
}

// Update replaces a student's profile fields (admin operation).
func (s *StudentService) Update(ctx context.Context, id string, in StudentInput) (*model.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "student ID is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.Name = in.Name
	student.Age = in.Age
	student.Major = in.Major
	student.Grade = in.Grade

	if err := s.students.Update(ctx, student); err != nil {
		s.logger.Error("failed to update student",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating student: %w", err)
	}

	s.logger.Info("student updated", slog.String("id", id))
	return student, nil
}

// Delete removes a student (admin operation). Their marks go with them and
// any linked login account keeps existing with its profile reference
// cleared.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "student ID is required")
	}

	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student deleted", slog.String("id", id))
	return nil
}

// MarkInput carries the fields for recording a test result.
type MarkInput struct {
	TestName      string `json:"test_name"`
	Subject       string `json:"subject"`
	MarksObtained int    `json:"marks_obtained"`
	TotalMarks    int    `json:"total_marks"`
	TestDate      string `json:"test_date"`
}

// AddMark records a test result for a student (admin operation).
func (s *StudentService) AddMark(ctx context.Context, studentID string, in MarkInput) (*model.Mark, error) {
	in.TestName = strings.TrimSpace(in.TestName)
	in.Subject = strings.TrimSpace(in.Subject)
	in.TestDate = strings.TrimSpace(in.TestDate)

	if in.TestName == "" {
		return nil, apperror.ValidationFailed("test_name", "test name is required")
	}
	if in.Subject == "" {
		return nil, apperror.ValidationFailed("subject", "subject is required")
	}
	if in.TotalMarks <= 0 {
		return nil, apperror.ValidationFailed("total_marks", "total marks must be greater than zero")
	}
	if in.MarksObtained < 0 || in.MarksObtained > in.TotalMarks {
		return nil, apperror.ValidationFailed("marks_obtained",
			"marks obtained must be between 0 and the total marks")
	}
	if in.TestDate != "" {
		if _, err := time.Parse("2006-01-02", in.TestDate); err != nil {
			return nil, apperror.ValidationFailed("test_date", "test date must be YYYY-MM-DD")
		}
	} else {
		in.TestDate = time.Now().Format("2006-01-02")
	}

	// The student must exist; 404 beats a foreign key failure.
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	mark := &model.Mark{
		StudentID:     studentID,
		TestName:      in.TestName,
		Subject:       in.Subject,
		MarksObtained: in.MarksObtained,
		TotalMarks:    in.TotalMarks,
		TestDate:      in.TestDate,
	}
	if err := s.marks.CreateMark(ctx, mark); err != nil {
		s.logger.Error("failed to add mark",
			slog.String("studentID", studentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding mark: %w", err)
	}

	s.logger.Info("mark added",
		slog.String("studentID", studentID),
		slog.String("subject", mark.Subject),
	)

	return mark, nil
}

// ListMarks returns a student's test marks. Admins can read anyone's marks;
// a student-role caller only their own.
func (s *StudentService) ListMarks(ctx context.Context, identity *auth.Identity, studentID string) ([]model.Mark, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, apperror.ValidationFailed("id", "student ID is required")
	}
	if err := s.checkOwnership(identity, studentID); err != nil {
		return nil, err
	}

	// Marks for a nonexistent student are NotFound, not an empty list.
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	return s.marks.ListMarksByStudent(ctx, studentID)
}

// Subjects returns the distinct subject names across all marks.
func (s *StudentService) Subjects(ctx context.Context) ([]string, error) {
	return s.marks.ListSubjects(ctx)
}

// Statistics aggregates the caller-visible result set under the given
// filter. A student's statistics therefore cover at most their own row.
func (s *StudentService) Statistics(ctx context.Context, identity *auth.Identity, filter repository.StudentFilter) (*export.Statistics, error) {
	students, err := s.List(ctx, identity, filter)
	if err != nil {
		return nil, err
	}
	stats := export.ComputeStatistics(students)
	return &stats, nil
}

// restrict applies row-level isolation to a filter. The second return is
// false when the caller can see no rows at all (student with no linked
// profile).
func (s *StudentService) restrict(identity *auth.Identity, filter repository.StudentFilter) (repository.StudentFilter, bool) {
	if identity == nil || identity.Role != model.RoleStudent {
		return filter, true
	}
	if identity.StudentID == "" {
		return filter, false
	}
	filter.StudentID = identity.StudentID
	return filter, true
}

// checkOwnership rejects a student-role caller reaching for a row that is
// not their own.
func (s *StudentService) checkOwnership(identity *auth.Identity, studentID string) error {
	if identity == nil || identity.Role != model.RoleStudent {
		return nil
	}
	if identity.StudentID != studentID {
		return apperror.Forbidden("you can only access your own record")
	}
	return nil
}
