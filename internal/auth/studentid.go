package auth

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

// Student IDs look like "STU-3F9A2C": a fixed prefix plus six characters of
// uppercase hex. The format is short enough to read out loud or type from an
// email, which is the whole point — registration emails the ID to the new
// student as their handle into the system.

const studentIDBytes = 3 // 3 random bytes → 6 hex characters

var studentIDPattern = regexp.MustCompile(`^STU-[A-F0-9]{6}$`)

// NewStudentID generates a random student identifier.
func NewStudentID() (string, error) {
	b := make([]byte, studentIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating student id: %w", err)
	}
	return fmt.Sprintf("STU-%02X%02X%02X", b[0], b[1], b[2]), nil
}

// ValidStudentID reports whether s has the STU-XXXXXX format.
func ValidStudentID(s string) bool {
	return studentIDPattern.MatchString(s)
}
