package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

func newTestStudentService(t *testing.T) (*StudentService, *mockStudentRepo) {
	t.Helper()
	repo := newMockStudentRepo()
	return NewStudentService(repo, repo, discardLogger()), repo
}

func adminIdentity() *auth.Identity {
	return &auth.Identity{UserID: "u-admin", Username: "admin", Role: model.RoleAdmin}
}

func studentIdentity(studentID string) *auth.Identity {
	return &auth.Identity{UserID: "u-stu", Username: "stu", Role: model.RoleStudent, StudentID: studentID}
}

func seedRoster(t *testing.T, repo *mockStudentRepo) {
	t.Helper()
	roster := []model.Student{
		{ID: "STU-000001", Name: "Alice", Age: 20, Major: "Computer Science", Grade: "A"},
		{ID: "STU-000002", Name: "Bob", Age: 22, Major: "Mathematics", Grade: "B"},
		{ID: "STU-000003", Name: "Carol", Age: 21, Major: "Computer Science", Grade: "C"},
	}
	for i := range roster {
		if err := repo.Create(context.Background(), &roster[i]); err != nil {
			t.Fatalf("seeding %s: %v", roster[i].ID, err)
		}
	}
}

// === Row-level isolation ===

func TestList_AdminSeesEveryone(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)

	students, err := svc.List(context.Background(), adminIdentity(), repository.StudentFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(students) != 3 {
		t.Errorf("List() returned %d students, want 3", len(students))
	}
}

// Whatever filters a student-role caller supplies, the result never
// contains anyone else's row.
func TestList_StudentSeesOnlyOwnRow(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()
	identity := studentIdentity("STU-000002")

	filters := []repository.StudentFilter{
		{},
		{Major: "Mathematics"},
		{Major: "Computer Science"}, // matches other rows, not theirs
		{Grade: "A"},
		{StudentID: "STU-000001"}, // trying to pin someone else's row
	}
	for _, filter := range filters {
		students, err := svc.List(ctx, identity, filter)
		if err != nil {
			t.Fatalf("List(%+v) error = %v", filter, err)
		}
		for _, s := range students {
			if s.ID != "STU-000002" {
				t.Errorf("List(%+v) leaked row %s to a student caller", filter, s.ID)
			}
		}
	}
}

// A student account whose profile row was deleted sees an empty list, not
// an error and not the full roster.
func TestList_StudentWithoutProfile(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)

	students, err := svc.List(context.Background(), studentIdentity(""), repository.StudentFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(students) != 0 {
		t.Errorf("List() returned %d rows for an unlinked student, want 0", len(students))
	}
}

func TestGet_Ownership(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	if _, err := svc.Get(ctx, studentIdentity("STU-000002"), "STU-000002"); err != nil {
		t.Errorf("Get(own row) error = %v", err)
	}
	if _, err := svc.Get(ctx, studentIdentity("STU-000002"), "STU-000001"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Get(other row) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, adminIdentity(), "STU-000001"); err != nil {
		t.Errorf("Get(admin, any row) error = %v", err)
	}
	if _, err := svc.Get(ctx, adminIdentity(), "STU-MISSING"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

// === Profile CRUD ===

func TestCreateStudent(t *testing.T) {
	svc, _ := newTestStudentService(t)

	student, err := svc.Create(context.Background(), StudentInput{Name: "Alice", Age: 20, Major: "CS", Grade: "a"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !auth.ValidStudentID(student.ID) {
		t.Errorf("ID = %q, not a STU-XXXXXX identifier", student.ID)
	}
	if student.Grade != "A" {
		t.Errorf("Grade = %q, want normalized to A", student.Grade)
	}
}

func TestStudentInput_Validation(t *testing.T) {
	svc, _ := newTestStudentService(t)
	ctx := context.Background()

	longName := make([]byte, MaxNameLength+1)
	for i := range longName {
		longName[i] = 'x'
	}

	tests := []struct {
		name string
		in   StudentInput
	}{
		{"empty name", StudentInput{Name: "", Age: 20, Major: "CS", Grade: "A"}},
		{"name too long", StudentInput{Name: string(longName), Age: 20, Major: "CS", Grade: "A"}},
		{"age zero", StudentInput{Name: "Alice", Age: 0, Major: "CS", Grade: "A"}},
		{"age too high", StudentInput{Name: "Alice", Age: 151, Major: "CS", Grade: "A"}},
		{"empty major", StudentInput{Name: "Alice", Age: 20, Major: "", Grade: "A"}},
		{"bad grade", StudentInput{Name: "Alice", Age: 20, Major: "CS", Grade: "E"}},
		{"multi-letter grade", StudentInput{Name: "Alice", Age: 20, Major: "CS", Grade: "A+"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.in); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateStudent(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	student, err := svc.Update(ctx, "STU-000001", StudentInput{Name: "Alice J.", Age: 21, Major: "Physics", Grade: "B"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if student.Name != "Alice J." || student.Major != "Physics" {
		t.Errorf("Update() = %+v", student)
	}

	if _, err := svc.Update(ctx, "STU-MISSING", StudentInput{Name: "x", Age: 20, Major: "CS", Grade: "A"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudent(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, "STU-000001"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, "STU-000001"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Delete(blank id) error = %v, want ErrValidation", err)
	}
}

// === Marks ===

func TestAddMark(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	mark, err := svc.AddMark(ctx, "STU-000001", MarkInput{
		TestName: "Midterm", Subject: "Algebra", MarksObtained: 45, TotalMarks: 50, TestDate: "2026-03-01",
	})
	if err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}
	if mark.Grade() != "A" {
		t.Errorf("Grade() = %q for 45/50, want A", mark.Grade())
	}
}

func TestAddMark_DefaultsDateToToday(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)

	mark, err := svc.AddMark(context.Background(), "STU-000001", MarkInput{
		TestName: "Quiz", Subject: "Algebra", MarksObtained: 10, TotalMarks: 20,
	})
	if err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}
	if mark.TestDate != time.Now().Format("2006-01-02") {
		t.Errorf("TestDate = %q, want today", mark.TestDate)
	}
}

func TestAddMark_Validation(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		in   MarkInput
	}{
		{"empty test name", MarkInput{Subject: "Algebra", MarksObtained: 1, TotalMarks: 2}},
		{"empty subject", MarkInput{TestName: "Quiz", MarksObtained: 1, TotalMarks: 2}},
		{"zero total", MarkInput{TestName: "Quiz", Subject: "Algebra", MarksObtained: 0, TotalMarks: 0}},
		{"negative obtained", MarkInput{TestName: "Quiz", Subject: "Algebra", MarksObtained: -1, TotalMarks: 10}},
		{"obtained above total", MarkInput{TestName: "Quiz", Subject: "Algebra", MarksObtained: 11, TotalMarks: 10}},
		{"malformed date", MarkInput{TestName: "Quiz", Subject: "Algebra", MarksObtained: 5, TotalMarks: 10, TestDate: "03/01/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddMark(ctx, "STU-000001", tt.in); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("AddMark() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAddMark_UnknownStudent(t *testing.T) {
	svc, _ := newTestStudentService(t)

	_, err := svc.AddMark(context.Background(), "STU-MISSING", MarkInput{
		TestName: "Quiz", Subject: "Algebra", MarksObtained: 5, TotalMarks: 10,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddMark(missing student) error = %v, want ErrNotFound", err)
	}
}

func TestListMarks_Ownership(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	if _, err := svc.AddMark(ctx, "STU-000001", MarkInput{TestName: "Quiz", Subject: "Algebra", MarksObtained: 5, TotalMarks: 10}); err != nil {
		t.Fatalf("AddMark() error = %v", err)
	}

	marks, err := svc.ListMarks(ctx, studentIdentity("STU-000001"), "STU-000001")
	if err != nil {
		t.Fatalf("ListMarks(own) error = %v", err)
	}
	if len(marks) != 1 {
		t.Errorf("ListMarks(own) returned %d marks, want 1", len(marks))
	}

	if _, err := svc.ListMarks(ctx, studentIdentity("STU-000002"), "STU-000001"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("ListMarks(other) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.ListMarks(ctx, adminIdentity(), "STU-MISSING"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListMarks(missing) error = %v, want ErrNotFound", err)
	}
}

// === Statistics ===

func TestStatistics_RespectsIsolation(t *testing.T) {
	svc, repo := newTestStudentService(t)
	seedRoster(t, repo)
	ctx := context.Background()

	stats, err := svc.Statistics(ctx, adminIdentity(), repository.StudentFilter{})
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("admin Total = %d, want 3", stats.Total)
	}

	stats, err = svc.Statistics(ctx, studentIdentity("STU-000002"), repository.StudentFilter{})
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("student Total = %d, want 1", stats.Total)
	}
}
