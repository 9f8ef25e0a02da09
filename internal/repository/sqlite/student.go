package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

// compile-time check that *DB implements repository.StudentRepository
var _ repository.StudentRepository = (*DB)(nil)

// sortColumns whitelists what ORDER BY may reference. Column names can
// never be bound as query parameters, so the only safe way to sort by a
// caller-supplied field is to map it through a fixed table like this.
// Anything not listed here falls back to the default ordering.
var sortColumns = map[string]string{
	"name":       "name",
	"age":        "age",
	"major":      "major",
	"grade":      "grade",
	"created_at": "created_at",
}

// Create inserts a new student row. The caller supplies the ID (students
// get the STU-XXXXXX identifier generated at registration or admin create);
// timestamps are set here.
func (db *DB) Create(ctx context.Context, student *model.Student) error {
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO students (id, name, age, major, grade, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.Name,
		student.Age,
		student.Major,
		student.Grade,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "students.id") {
			return apperror.Conflict("student", fmt.Sprintf("id %s already exists", student.ID))
		}
		return fmt.Errorf("sqlite: creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a single student.
// Returns apperror.ErrNotFound if no row matches.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, age, major, grade, created_at, updated_at
		 FROM students
		 WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.Name, &s.Age, &s.Major, &s.Grade, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("student", id)
		}
		return nil, fmt.Errorf("sqlite: getting student %s: %w", id, err)
	}

	return &s, nil
}

// List retrieves students matching the filter.
//
// The query is assembled from a fixed set of parameterized predicates —
// filter values only ever travel as bound arguments, never spliced into the
// SQL text. The one thing that can't be parameterized, the sort column,
// goes through the sortColumns whitelist above.
func (db *DB) List(ctx context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	query := `SELECT id, name, age, major, grade, created_at, updated_at
	          FROM students WHERE 1=1`
	var args []any

	// Row-level isolation comes first: when the filter pins a single
	// student, no other predicate can widen the result set back out.
	if filter.StudentID != "" {
		query += ` AND id = ?`
		args = append(args, filter.StudentID)
	}

	if filter.Search != "" {
		// Substring match over the text columns plus the stringified age.
		// LIKE is case-insensitive for ASCII in SQLite by default.
		pattern := "%" + filter.Search + "%"
		query += ` AND (name LIKE ? OR major LIKE ? OR grade LIKE ? OR CAST(age AS TEXT) LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if filter.Major != "" {
		query += ` AND major = ?`
		args = append(args, filter.Major)
	}

	if filter.Grade != "" {
		query += ` AND grade = ?`
		args = append(args, filter.Grade)
	}

	// Unknown sort fields are silently ignored: the fallback ordering is
	// newest-first, same as an empty filter.
	if col, ok := sortColumns[filter.SortBy]; ok {
		order := "ASC"
		if filter.SortOrder == repository.SortDesc {
			order = "DESC"
		}
		query += ` ORDER BY ` + col + ` ` + order
	} else {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing students: %w", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Age, &s.Major, &s.Grade, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating students: %w", err)
	}

	return students, nil
}

// Update modifies an existing student's profile fields.
// id and created_at are immutable; updated_at is always bumped.
func (db *DB) Update(ctx context.Context, student *model.Student) error {
	student.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE students
		 SET name = ?, age = ?, major = ?, grade = ?, updated_at = ?
		 WHERE id = ?`,
		student.Name,
		student.Age,
		student.Major,
		student.Grade,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating student %s: %w", student.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("student", student.ID)
	}

	return nil
}

// Delete removes a student row. The schema's referential actions do the
// rest atomically: marks rows cascade away, and a linked user's student_id
// is set to NULL (the account itself survives — see the users table DDL).
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM students WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting student %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("student", id)
	}

	return nil
}
