// Package model defines the data structures used throughout the application.
package model

import "time"

// Student is a single student profile row.
//
// The ID is not a database-generated integer: it is an opaque token in the
// form "STU-3F9A2C" (see auth.NewStudentID). Students receive this ID by
// email at registration and use it to find their dashboard, so it must be
// short enough to read over the phone and stable for the life of the row.
//
// Grade is the student's overall letter grade, one of A/B/C/D/F. It is set
// by an administrator; it is not derived from the student's test marks
// (those carry their own per-test grades, see Mark).
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Major     string    `json:"major"`
	Grade     string    `json:"grade"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LetterGrades lists the accepted grade letters in display order.
// Keep this in sync with the CHECK constraint on the students table.
var LetterGrades = []string{"A", "B", "C", "D", "F"}

// ValidGrade reports whether g is one of the accepted letter grades.
func ValidGrade(g string) bool {
	for _, l := range LetterGrades {
		if g == l {
			return true
		}
	}
	return false
}
