package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ydahmen/student-records/internal/model"
)

func TestMarkCreateList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mustCreateStudent(t, db, &model.Student{ID: "STU-AB12CD", Name: "Alice", Age: 20, Major: "CS", Grade: "A"})

	marks := []model.Mark{
		{StudentID: "STU-AB12CD", TestName: "Quiz 1", Subject: "Algebra", MarksObtained: 18, TotalMarks: 20, TestDate: "2026-01-10"},
		{StudentID: "STU-AB12CD", TestName: "Midterm", Subject: "Algebra", MarksObtained: 45, TotalMarks: 50, TestDate: "2026-03-01"},
		{StudentID: "STU-AB12CD", TestName: "Quiz 2", Subject: "Physics", MarksObtained: 12, TotalMarks: 20, TestDate: "2026-02-05"},
	}
	for i := range marks {
		if err := db.CreateMark(ctx, &marks[i]); err != nil {
			t.Fatalf("CreateMark(%s) error = %v", marks[i].TestName, err)
		}
		if marks[i].ID == "" {
			t.Errorf("CreateMark(%s) did not assign an ID", marks[i].TestName)
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := db.ListMarksByStudent(ctx, "STU-AB12CD")
	if err != nil {
		t.Fatalf("ListMarksByStudent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListMarksByStudent() returned %d marks, want 3", len(got))
	}
	// Most recent test date first.
	want := []string{"Midterm", "Quiz 2", "Quiz 1"}
	for i, m := range got {
		if m.TestName != want[i] {
			t.Errorf("marks[%d] = %s, want %s", i, m.TestName, want[i])
		}
	}
}

func TestMarkCreate_UnknownStudent(t *testing.T) {
	db := newTestDB(t)

	mark := &model.Mark{StudentID: "STU-MISSING", TestName: "Quiz", Subject: "Algebra", MarksObtained: 1, TotalMarks: 2, TestDate: "2026-01-01"}
	if err := db.CreateMark(context.Background(), mark); err == nil {
		t.Fatal("CreateMark() accepted a mark for a nonexistent student")
	}
}

func TestListMarks_Empty(t *testing.T) {
	db := newTestDB(t)
	mustCreateStudent(t, db, &model.Student{ID: "STU-AB12CD", Name: "Alice", Age: 20, Major: "CS", Grade: "A"})

	marks, err := db.ListMarksByStudent(context.Background(), "STU-AB12CD")
	if err != nil {
		t.Fatalf("ListMarksByStudent() error = %v", err)
	}
	if marks == nil || len(marks) != 0 {
		t.Errorf("ListMarksByStudent() = %v, want empty non-nil slice", marks)
	}
}

func TestListSubjects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	subjects, err := db.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("ListSubjects() error = %v", err)
	}
	if len(subjects) != 0 {
		t.Errorf("ListSubjects() on empty table = %v", subjects)
	}

	mustCreateStudent(t, db, &model.Student{ID: "STU-AB12CD", Name: "Alice", Age: 20, Major: "CS", Grade: "A"})
	for _, subj := range []string{"Physics", "Algebra", "Physics", "Chemistry"} {
		m := &model.Mark{StudentID: "STU-AB12CD", TestName: "Test", Subject: subj, MarksObtained: 10, TotalMarks: 20, TestDate: "2026-01-01"}
		if err := db.CreateMark(ctx, m); err != nil {
			t.Fatalf("CreateMark() error = %v", err)
		}
	}

	subjects, err = db.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("ListSubjects() error = %v", err)
	}
	want := []string{"Algebra", "Chemistry", "Physics"}
	if len(subjects) != len(want) {
		t.Fatalf("ListSubjects() = %v, want %v", subjects, want)
	}
	for i := range want {
		if subjects[i] != want[i] {
			t.Errorf("ListSubjects() = %v, want %v", subjects, want)
			break
		}
	}
}
