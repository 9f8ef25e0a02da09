package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

// compile-time check that *DB implements repository.MarkRepository
var _ repository.MarkRepository = (*DB)(nil)

// CreateMark inserts a test mark for a student. The student must exist —
// the foreign key rejects marks for unknown students, which we surface as
// NotFound since from the caller's view the student is what's missing.
func (db *DB) CreateMark(ctx context.Context, mark *model.Mark) error {
	mark.ID = xid.New().String()
	mark.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO marks (id, student_id, test_name, subject, marks_obtained, total_marks, test_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mark.ID,
		mark.StudentID,
		mark.TestName,
		mark.Subject,
		mark.MarksObtained,
		mark.TotalMarks,
		mark.TestDate,
		mark.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating mark for student %s: %w", mark.StudentID, err)
	}

	return nil
}

// ListMarksByStudent returns a student's marks, most recent test first.
func (db *DB) ListMarksByStudent(ctx context.Context, studentID string) ([]model.Mark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, student_id, test_name, subject, marks_obtained, total_marks, test_date, created_at
		 FROM marks
		 WHERE student_id = ?
		 ORDER BY test_date DESC, created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing marks for student %s: %w", studentID, err)
	}
	defer rows.Close()

	marks := []model.Mark{}
	for rows.Next() {
		var m model.Mark
		if err := rows.Scan(
			&m.ID, &m.StudentID, &m.TestName, &m.Subject,
			&m.MarksObtained, &m.TotalMarks, &m.TestDate, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mark row: %w", err)
		}
		marks = append(marks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating marks: %w", err)
	}

	return marks, nil
}

// ListSubjects returns the distinct subjects across all marks, sorted.
// Feeds the subject autocomplete in the mark entry form.
func (db *DB) ListSubjects(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT subject FROM marks ORDER BY subject ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subjects: %w", err)
	}

	return subjects, nil
}
