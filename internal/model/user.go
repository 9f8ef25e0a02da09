package model

import "time"

// Role determines what a caller may see and do. It is a closed set: every
// switch over Role handles both values explicitly, and anything else is
// rejected at the authorization boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is a login account.
//
// PasswordHash holds a bcrypt hash, never a plaintext password. The json:"-"
// tag keeps it out of every API response no matter which handler serializes
// the struct.
//
// StudentID links a student-role account to its profile row in the students
// table. It is empty for admins, and goes empty again if an admin deletes
// the linked student (the delete nullifies the reference rather than
// deleting the account). At most one user may reference a given student.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"` // optional, unique when present
	Role         Role      `json:"role"`
	StudentID    string    `json:"studentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
