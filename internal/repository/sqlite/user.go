package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given qualified column ("users.username" etc). modernc.org/sqlite
// surfaces constraint failures as plain errors whose text names the column,
// so string matching is the pragmatic way to translate them into domain
// conflicts.
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// CreateUser inserts a login account. ID and timestamps are generated here;
// empty Email/StudentID become NULL so the partial UNIQUE semantics hold.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, role, student_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		nullable(user.Email),
		string(user.Role),
		nullable(user.StudentID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translateUserConflict(err, user)
	}

	return nil
}

// CreateAccount inserts a student profile and its linked user row inside a
// single transaction. Registration must not leave an orphan student row
// behind when the user insert fails (duplicate username, say), so either
// both inserts commit or neither does.
func (db *DB) CreateAccount(ctx context.Context, student *model.Student, user *model.User) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning registration tx: %w", err)
	}
	defer tx.Rollback() // no-op after a successful Commit

	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO students (id, name, age, major, grade, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.Name, student.Age, student.Major, student.Grade,
		student.CreatedAt, student.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "students.id") {
			return apperror.Conflict("student", fmt.Sprintf("id %s already exists", student.ID))
		}
		return fmt.Errorf("sqlite: inserting student for registration: %w", err)
	}

	user.ID = xid.New().String()
	user.StudentID = student.ID
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, role, student_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, nullable(user.Email),
		string(user.Role), nullable(user.StudentID), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return translateUserConflict(err, user)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing registration: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by their unique username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

// CountByRole returns how many accounts hold the given role.
// Used at startup to decide whether the default admin needs seeding.
func (db *DB) CountByRole(ctx context.Context, role model.Role) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ?`, string(role),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting %s users: %w", role, err)
	}
	return count, nil
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		u         model.User
		email     sql.NullString
		studentID sql.NullString
		role      string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, role, student_id, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &role, &studentID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user %v: %w", arg, err)
	}

	u.Email = email.String
	u.StudentID = studentID.String
	u.Role = model.Role(role)

	return &u, nil
}

// translateUserConflict maps UNIQUE failures on the users table to domain
// conflicts; anything else is wrapped as a store error.
func translateUserConflict(err error, user *model.User) error {
	switch {
	case isUniqueViolation(err, "users.username"):
		return apperror.Conflict("user", fmt.Sprintf("username %q is already taken", user.Username))
	case isUniqueViolation(err, "users.email"):
		return apperror.Conflict("user", fmt.Sprintf("email %q is already registered", user.Email))
	case isUniqueViolation(err, "users.student_id"):
		return apperror.Conflict("user", fmt.Sprintf("student %s already has an account", user.StudentID))
	default:
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
