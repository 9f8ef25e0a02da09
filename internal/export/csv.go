package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ydahmen/student-records/internal/model"
)

// csvHeader is the fixed column set of a CSV export. The client re-imports
// these files into spreadsheets, so the header names are part of the
// contract — don't rename them casually.
var csvHeader = []string{"Student ID", "Name", "Age", "Major", "Grade", "Created Date"}

// WriteCSV renders the students as CSV to w. encoding/csv handles quoting,
// so names containing commas or quotes round-trip cleanly.
func WriteCSV(w io.Writer, students []model.Student) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: writing csv header: %w", err)
	}

	for _, s := range students {
		record := []string{
			s.ID,
			s.Name,
			strconv.Itoa(s.Age),
			s.Major,
			s.Grade,
			s.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: writing csv row for %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flushing csv: %w", err)
	}

	return nil
}
