// Package export renders a filtered student result set as CSV or a PDF
// report, and computes the aggregate statistics both the PDF and the
// statistics endpoint share.
//
// The package never fetches data itself: callers pass in the row set they
// obtained through the service layer, so every export is subject to exactly
// the same authorization and filtering as a plain list query.
package export

import (
	"fmt"
	"sort"

	"github.com/ydahmen/student-records/internal/model"
)

// Bucket is one slice of a distribution: how many students share a value
// and what share of the total that is.
type Bucket struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Statistics aggregates a student result set.
type Statistics struct {
	Total  int      `json:"total"`
	Grades []Bucket `json:"grades"`
	Majors []Bucket `json:"majors"`
}

// ComputeStatistics builds grade and major distributions for the given
// rows. Ordering is deterministic: grades in A,B,C,D,F display order
// (zero-count grades omitted), majors alphabetical.
func ComputeStatistics(students []model.Student) Statistics {
	stats := Statistics{Total: len(students)}

	gradeCounts := map[string]int{}
	majorCounts := map[string]int{}
	for _, s := range students {
		gradeCounts[s.Grade]++
		majorCounts[s.Major]++
	}

	for _, g := range model.LetterGrades {
		if n := gradeCounts[g]; n > 0 {
			stats.Grades = append(stats.Grades, Bucket{
				Value:      g,
				Count:      n,
				Percentage: percentage(n, stats.Total),
			})
		}
	}

	majors := make([]string, 0, len(majorCounts))
	for m := range majorCounts {
		majors = append(majors, m)
	}
	sort.Strings(majors)
	for _, m := range majors {
		stats.Majors = append(stats.Majors, Bucket{
			Value:      m,
			Count:      majorCounts[m],
			Percentage: percentage(majorCounts[m], stats.Total),
		})
	}

	return stats
}

// percentage returns n/total as a percentage rounded to two decimals.
func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(n) / float64(total) * 100
	// round half away from zero to 2 dp, matching the display format
	return float64(int(pct*100+0.5)) / 100
}

// FilterSummary describes the filters applied to an export, for display in
// the PDF header. The zero value renders as "All students".
type FilterSummary struct {
	Search string
	Major  string
	Grade  string
}

// String renders the applied filters as a single human-readable line.
func (f FilterSummary) String() string {
	parts := []string{}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", f.Search))
	}
	if f.Major != "" {
		parts = append(parts, "Major: "+f.Major)
	}
	if f.Grade != "" {
		parts = append(parts, "Grade: "+f.Grade)
	}
	if len(parts) == 0 {
		return "All students"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
