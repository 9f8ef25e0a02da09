package export

import (
	"testing"

	"github.com/ydahmen/student-records/internal/model"
)

func sampleStudents() []model.Student {
	return []model.Student{
		{ID: "STU-000001", Name: "Alice", Age: 20, Major: "Computer Science", Grade: "A"},
		{ID: "STU-000002", Name: "Bob", Age: 22, Major: "Mathematics", Grade: "B"},
		{ID: "STU-000003", Name: "Carol", Age: 21, Major: "Computer Science", Grade: "A"},
	}
}

func TestComputeStatistics(t *testing.T) {
	stats := ComputeStatistics(sampleStudents())

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}

	wantGrades := []Bucket{
		{Value: "A", Count: 2, Percentage: 66.67},
		{Value: "B", Count: 1, Percentage: 33.33},
	}
	if len(stats.Grades) != len(wantGrades) {
		t.Fatalf("Grades = %+v, want %+v", stats.Grades, wantGrades)
	}
	for i, want := range wantGrades {
		if stats.Grades[i] != want {
			t.Errorf("Grades[%d] = %+v, want %+v", i, stats.Grades[i], want)
		}
	}

	// Majors come back alphabetical.
	wantMajors := []Bucket{
		{Value: "Computer Science", Count: 2, Percentage: 66.67},
		{Value: "Mathematics", Count: 1, Percentage: 33.33},
	}
	if len(stats.Majors) != len(wantMajors) {
		t.Fatalf("Majors = %+v, want %+v", stats.Majors, wantMajors)
	}
	for i, want := range wantMajors {
		if stats.Majors[i] != want {
			t.Errorf("Majors[%d] = %+v, want %+v", i, stats.Majors[i], want)
		}
	}
}

// Zero-count grades are dropped and the kept ones stay in display order,
// not count order.
func TestComputeStatistics_GradeOrder(t *testing.T) {
	students := []model.Student{
		{ID: "1", Major: "CS", Grade: "F"},
		{ID: "2", Major: "CS", Grade: "F"},
		{ID: "3", Major: "CS", Grade: "B"},
		{ID: "4", Major: "CS", Grade: "D"},
	}
	stats := ComputeStatistics(students)

	got := make([]string, len(stats.Grades))
	for i, b := range stats.Grades {
		got[i] = b.Value
	}
	want := []string{"B", "D", "F"}
	if len(got) != len(want) {
		t.Fatalf("grade order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("grade order = %v, want %v", got, want)
		}
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil)

	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0", stats.Total)
	}
	if len(stats.Grades) != 0 || len(stats.Majors) != 0 {
		t.Errorf("empty input produced buckets: %+v", stats)
	}
}

func TestFilterSummaryString(t *testing.T) {
	tests := []struct {
		name    string
		summary FilterSummary
		want    string
	}{
		{"no filters", FilterSummary{}, "All students"},
		{"search only", FilterSummary{Search: "alice"}, `Search: "alice"`},
		{"major and grade", FilterSummary{Major: "CS", Grade: "A"}, "Major: CS, Grade: A"},
		{"all three", FilterSummary{Search: "x", Major: "CS", Grade: "A"}, `Search: "x", Major: CS, Grade: A`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
