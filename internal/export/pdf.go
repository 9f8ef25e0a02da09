package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/ydahmen/student-records/internal/model"
)

// Table layout in mm on an A4 portrait page.
var pdfColumns = []struct {
	title string
	width float64
}{
	{"Student ID", 30},
	{"Name", 50},
	{"Age", 15},
	{"Major", 45},
	{"Grade", 18},
	{"Created", 32},
}

const (
	pdfRowHeight   = 7
	pdfPageBreakAt = 270 // start a fresh page once the cursor passes this Y
)

// WritePDF renders the students as a paginated report: a title block with
// the generation timestamp, total count and applied-filter summary, the
// tabular listing, and a closing statistics page with grade and major
// distributions.
//
// gofpdf accumulates errors internally and reports them from Output, so a
// failure anywhere in the drawing produces a single error here and the
// caller can discard the whole document — no partial file escapes.
func WritePDF(w io.Writer, students []model.Student, filters FilterSummary, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")

	pdf.AddPage()

	// Title block
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Student Records Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, "Generated: "+generatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Total students: %d", len(students)))
	pdf.Ln(5)
	pdf.Cell(0, 5, "Filters: "+filters.String())
	pdf.Ln(4)

	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.3)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(6)

	writePDFTableHeader(pdf)

	pdf.SetFont("Arial", "", 9)
	for _, s := range students {
		if pdf.GetY() > pdfPageBreakAt {
			pdf.AddPage()
			writePDFTableHeader(pdf)
			pdf.SetFont("Arial", "", 9)
		}

		cells := []string{
			s.ID,
			s.Name,
			fmt.Sprintf("%d", s.Age),
			s.Major,
			s.Grade,
			s.CreatedAt.Format("2006-01-02"),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	writePDFStatistics(pdf, ComputeStatistics(students))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: rendering pdf: %w", err)
	}

	return nil
}

func writePDFTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

// writePDFStatistics appends the summary page: grade distribution first,
// then major distribution, each as "value  count (percentage)".
func writePDFStatistics(pdf *gofpdf.Fpdf, stats Statistics) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Summary Statistics")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Grade Distribution")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	if len(stats.Grades) == 0 {
		pdf.Cell(0, 6, "No students in this result set.")
		pdf.Ln(7)
	}
	for _, b := range stats.Grades {
		pdf.Cell(0, 6, fmt.Sprintf("Grade %s: %d students (%.2f%%)", b.Value, b.Count, b.Percentage))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Major Distribution")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, b := range stats.Majors {
		pdf.Cell(0, 6, fmt.Sprintf("%s: %d students (%.2f%%)", b.Value, b.Count, b.Percentage))
		pdf.Ln(6)
	}
}
