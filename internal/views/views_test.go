package views

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"medicare-pms/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

func at(day, hour, min int) time.Time {
	return time.Date(2025, 6, day, hour, min, 0, 0, jakarta)
}

func patient(id, name, phone, disease, rx string, updated time.Time, visits ...models.Visit) models.Patient {
	p := models.Patient{
		ID:        id,
		Name:      name,
		Age:       30,
		Gender:    models.GenderMale,
		Phone:     phone,
		UpdatedAt: updated,
	}
	if len(visits) == 0 {
		visits = []models.Visit{{ID: id + "-v", Date: updated, Disease: disease, Prescription: rx}}
	}
	p.MedicalHistory = visits
	p.Diseases = visits[0].Disease
	p.Diagnosis = visits[0].Diagnosis
	p.Prescription = visits[0].Prescription
	return p
}

func fixture() []models.Patient {
	return []models.Patient{
		patient("p1", "Sarah Jenkins", "555-0123", "Hypertension", "Lisinopril 10mg daily", at(10, 9, 0)),
		patient("p2", "Michael Chen", "555-9876", "Acute Bronchitis", "Cough syrup", at(9, 15, 0)),
		patient("p3", "Emily Davis", "555-4567", "Type 2 Diabetes", "Metformin 500mg", at(10, 11, 0)),
	}
}

func ids(patients []models.Patient) []string {
	out := make([]string, len(patients))
	for i, p := range patients {
		out[i] = p.ID
	}
	return out
}

func TestSortByRecency(t *testing.T) {
	in := fixture()
	sorted := SortByRecency(in)
	assert.Equal(t, []string{"p3", "p1", "p2"}, ids(sorted))
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(in), "input is untouched")
}

func TestSortByRecency_StableOnTies(t *testing.T) {
	same := at(10, 8, 0)
	in := []models.Patient{
		patient("a", "A", "1", "", "", same),
		patient("b", "B", "2", "", "", same),
		patient("c", "C", "3", "", "", same),
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(SortByRecency(in)))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields Field
		want   []string
	}{
		{"blank keeps order", "   ", CanonicalFields, []string{"p1", "p2", "p3"}},
		{"empty keeps order", "", MedicalFields, []string{"p1", "p2", "p3"}},
		{"name case-insensitive", "sarah", CanonicalFields, []string{"p1"}},
		{"phone substring", "555-9", CanonicalFields, []string{"p2"}},
		{"disease", "DIABETES", CanonicalFields, []string{"p3"}},
		{"prescription", "syrup", CanonicalFields, []string{"p2"}},
		{"id only for admin", "p2", AdminFields, []string{"p2"}},
		{"id ignored for medical", "p2", MedicalFields, []string{}},
		{"no match", "zzz", CanonicalFields, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(fixture(), tt.query, tt.fields)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_DiagnosisForMedicalStore(t *testing.T) {
	p := patient("p9", "X", "9", "Flu", "Rest", at(10, 1, 0),
		models.Visit{ID: "v", Date: at(10, 1, 0), Disease: "Flu", Diagnosis: "Viral infection", Prescription: "Rest"})
	snapshot := []models.Patient{p}

	assert.Len(t, Filter(snapshot, "viral", MedicalFields), 1)
	assert.Empty(t, Filter(snapshot, "viral", CanonicalFields))
}

func TestFilter_Partition(t *testing.T) {
	snapshot := fixture()
	for _, q := range []string{"5", "e", "an", "Lisinopril", "-", "Z"} {
		kept := Filter(snapshot, q, CanonicalFields)
		keptIDs := map[string]bool{}
		for _, p := range kept {
			keptIDs[p.ID] = true
			assert.True(t, Matches(p, strings.ToLower(q), CanonicalFields), "query %q kept %s", q, p.ID)
		}
		for _, p := range snapshot {
			if !keptIDs[p.ID] {
				assert.False(t, Matches(p, strings.ToLower(q), CanonicalFields), "query %q dropped %s", q, p.ID)
			}
		}
	}
}

func TestLookupPhone(t *testing.T) {
	snapshot := fixture()

	got := LookupPhone(snapshot, "555-9876")
	assert.True(t, got.Existing)
	require.NotNil(t, got.Patient)
	assert.Equal(t, "Michael Chen", got.Patient.Name)

	padded := LookupPhone(snapshot, "  555-9876 ")
	assert.True(t, padded.Existing, "surrounding blanks are ignored")

	assert.False(t, LookupPhone(snapshot, "555-98").Existing, "prefix is not a match")
	assert.False(t, LookupPhone(snapshot, "  55512   ").Existing, "too short once trimmed")
	assert.False(t, LookupPhone(snapshot, "55512").Existing, "too short")
	assert.False(t, LookupPhone(nil, "555-9876").Existing)
}

func TestTruncate(t *testing.T) {
	assert.Len(t, Truncate(fixture(), 2), 2)
	assert.Len(t, Truncate(fixture(), 0), 3)
	assert.Len(t, Truncate(fixture(), 10), 3)
}

func TestHistory_KeepsStoredOrder(t *testing.T) {
	// The latest recorded visit was backdated two days; it still leads.
	p := patient("p", "P", "1", "", "", at(10, 9, 0),
		models.Visit{ID: "backdated", Date: at(8, 9, 0), Disease: "Backdated"},
		models.Visit{ID: "flu", Date: at(10, 9, 0), Disease: "Flu"},
	)
	h := History(p)
	require.Len(t, h, 2)
	assert.Equal(t, "backdated", h[0].ID)
	assert.Equal(t, p.Diseases, h[0].Disease, "first entry is the current condition")
	assert.Equal(t, "flu", h[1].ID)

	h[0].Disease = "changed"
	assert.Equal(t, "Backdated", p.MedicalHistory[0].Disease, "patient is untouched")
}

func TestDailyVisits(t *testing.T) {
	day := at(10, 12, 0)
	snapshot := []models.Patient{
		patient("p1", "Sarah", "1", "", "", at(10, 9, 0),
			models.Visit{ID: "s-today", Date: at(10, 9, 0), Disease: "Hypertension"},
			models.Visit{ID: "s-old", Date: at(1, 9, 0), Disease: "Allergy"},
		),
		patient("p2", "Michael", "2", "", "", at(9, 23, 59),
			models.Visit{ID: "m-yesterday", Date: at(9, 23, 59)},
		),
		patient("p3", "Emily", "3", "", "", at(10, 23, 59),
			models.Visit{ID: "e-late", Date: at(10, 23, 59)},
			models.Visit{ID: "e-midnight", Date: at(10, 0, 0)},
		),
		{ID: "p4", Name: "No history", Phone: "4"},
	}

	rows := DailyVisits(snapshot, day)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Visit.ID
		start, end := DayBounds(day)
		assert.False(t, r.Visit.Date.Before(start))
		assert.True(t, r.Visit.Date.Before(end))
	}
	assert.Equal(t, []string{"e-late", "s-today", "e-midnight"}, got)
	assert.Equal(t, "Sarah", rows[1].PatientName)
	assert.Equal(t, "1", rows[1].Phone)
}

func TestDailyVisits_UsesDayLocation(t *testing.T) {
	// 20:00 UTC on the 9th is 03:00 on the 10th in WIB.
	v := models.Visit{ID: "v", Date: time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC)}
	snapshot := []models.Patient{patient("p", "P", "1", "", "", v.Date, v)}

	assert.Len(t, DailyVisits(snapshot, at(10, 12, 0)), 1)
	assert.Empty(t, DailyVisits(snapshot, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)))
}

func TestDailyVisits_Empty(t *testing.T) {
	rows := DailyVisits(nil, at(10, 0, 0))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	report := BuildDailyReport(nil, at(10, 0, 0))
	assert.Equal(t, "2025-06-10", report.Date)
	assert.Zero(t, report.Count)
}

func TestStats_PatientsVersusVisits(t *testing.T) {
	day := at(10, 12, 0)
	snapshot := []models.Patient{
		patient("p1", "A", "1", "", "", at(10, 9, 0),
			models.Visit{ID: "a2", Date: at(10, 9, 0)},
			models.Visit{ID: "a1", Date: at(10, 8, 0)},
		),
		patient("p2", "B", "2", "", "", at(10, 10, 0)),
		patient("p3", "C", "3", "", "", at(9, 10, 0)),
	}

	stats := BuildStats(snapshot, day)
	assert.Equal(t, 3, stats.TotalPatients)
	assert.Equal(t, 2, stats.UpdatedToday)
	assert.Equal(t, 3, stats.VisitsToday)
}

func TestWriteCSV_Format(t *testing.T) {
	rows := []ReportRow{
		{
			PatientName: `Ann "Nan" Lee`,
			Phone:       "555-0001",
			Age:         45,
			Visit: models.Visit{
				Date:         time.Date(2025, 6, 10, 14, 5, 9, 0, jakarta),
				Disease:      "Flu",
				Diagnosis:    "Viral, mild",
				Prescription: `Paracetamol "500mg"`,
			},
		},
	}

	got := ReportCSV(rows, jakarta)
	want := "Time,Patient Name,Phone,Age,Disease,Diagnosis,Prescription\n" +
		`"2:05:09 PM","Ann ""Nan"" Lee","555-0001","45","Flu","Viral, mild","Paracetamol ""500mg"""` + "\n"
	assert.Equal(t, want, got)
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	assert.Equal(t, CSVHeader+"\n", ReportCSV(nil, jakarta))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	day := at(10, 12, 0)
	snapshot := []models.Patient{
		patient("p1", `O"Brien, Pat`, "555-1", "", "", at(10, 9, 0),
			models.Visit{ID: "1", Date: at(10, 9, 0), Disease: "Cold, common", Diagnosis: "line\nbreak", Prescription: `"quoted"`},
		),
		patient("p2", "Lee", "555-2", "", "", at(10, 11, 0),
			models.Visit{ID: "2", Date: at(10, 11, 0), Disease: "Flu"},
		),
	}
	rows := DailyVisits(snapshot, day)

	records, err := csv.NewReader(strings.NewReader(ReportCSV(rows, jakarta))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)
	assert.Equal(t, strings.Split(CSVHeader, ","), records[0])

	for i, r := range rows {
		rec := records[i+1]
		assert.Equal(t, r.PatientName, rec[1])
		assert.Equal(t, r.Phone, rec[2])
		assert.Equal(t, strconv.Itoa(r.Age), rec[3])
		assert.Equal(t, r.Visit.Disease, rec[4])
		assert.Equal(t, r.Visit.Diagnosis, rec[5])
		assert.Equal(t, r.Visit.Prescription, rec[6])
	}
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "Medical_Daily_Report_2025-06-10.csv", ReportFilename(at(10, 23, 0)))
}
