// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage provides the only real implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/ydahmen/student-records/internal/model"
)

// SortOrder is a query sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// StudentFilter narrows a student list query. All fields are optional; the
// zero value means "every student, newest first".
//
// StudentID is the row-level isolation hook: when set, the result set is
// restricted to that single row regardless of the other fields. The service
// layer fills it in for student-role callers with their own linked id —
// repository callers never bypass it.
type StudentFilter struct {
	Major  string // exact match
	Grade  string // exact match
	Search string // case-insensitive substring over name, major, grade, age

	// SortBy must be one of name, age, major, grade, created_at. Anything
	// else (including empty) falls back to created_at descending — unknown
	// sort fields are ignored, never an error.
	SortBy    string
	SortOrder SortOrder

	StudentID string // restrict to this single row when non-empty
}

// StudentRepository persists student profile rows.
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	// Delete removes the student. Their marks go with them and any user
	// row's reference to them is cleared; both happen atomically with the
	// delete itself.
	Delete(ctx context.Context, id string) error
}

// MarkRepository persists test marks. Marks are append-only.
type MarkRepository interface {
	CreateMark(ctx context.Context, mark *model.Mark) error
	ListMarksByStudent(ctx context.Context, studentID string) ([]model.Mark, error)
	ListSubjects(ctx context.Context) ([]string, error)
}

// UserRepository persists login accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
	// CreateAccount inserts a student profile and its linked user row as a
	// single atomic unit: either both rows exist afterwards or neither does.
	CreateAccount(ctx context.Context, student *model.Student, user *model.User) error
}
