package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/ydahmen/student-records/internal/model"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	students := []model.Student{
		{ID: "STU-000001", Name: "Alice Johnson", Age: 20, Major: "Computer Science", Grade: "A", CreatedAt: created},
		{ID: "STU-000002", Name: "Bob Smith", Age: 22, Major: "Mathematics", Grade: "B", CreatedAt: created},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, students); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}

	header := records[0]
	if header[0] != "Student ID" || header[5] != "Created Date" {
		t.Errorf("header = %v", header)
	}

	row := records[1]
	want := []string{"STU-000001", "Alice Johnson", "20", "Computer Science", "A", "2026-03-15"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, row[i], want[i])
		}
	}
}

// Names containing the CSV metacharacters must survive a write/read cycle.
func TestWriteCSV_Quoting(t *testing.T) {
	students := []model.Student{
		{ID: "STU-000001", Name: `Smith, John "JJ"`, Age: 20, Major: "Arts, Media", Grade: "B", CreatedAt: time.Now()},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, students); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing csv: %v", err)
	}
	if records[1][1] != `Smith, John "JJ"` {
		t.Errorf("name = %q after round trip", records[1][1])
	}
	if records[1][3] != "Arts, Media" {
		t.Errorf("major = %q after round trip", records[1][3])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parsing csv: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("empty export has %d records, want header only", len(records))
	}
}
