package model

import "time"

// Mark is one test result for a student.
//
// Marks are append-only: they are created by an administrator and never
// updated. They disappear only when their owning student row is deleted
// (the students→marks foreign key cascades).
type Mark struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	TestName      string    `json:"test_name"`
	Subject       string    `json:"subject"`
	MarksObtained int       `json:"marks_obtained"`
	TotalMarks    int       `json:"total_marks"`
	TestDate      string    `json:"test_date"` // ISO date, e.g. "2026-03-14"
	CreatedAt     time.Time `json:"createdAt"`
}

// Percentage returns the score as a percentage of the total.
// Returns 0 for a zero total (the service layer rejects those on create,
// but old rows must not divide by zero).
func (m Mark) Percentage() float64 {
	if m.TotalMarks <= 0 {
		return 0
	}
	return float64(m.MarksObtained) / float64(m.TotalMarks) * 100
}

// Grade returns the letter grade for this mark's percentage.
func (m Mark) Grade() string {
	return GradeForPercentage(m.Percentage())
}

// GradeForPercentage maps a percentage to a letter grade using fixed
// thresholds. Boundaries belong to the higher grade: exactly 90 is an A,
// exactly 80 is a B.
func GradeForPercentage(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
