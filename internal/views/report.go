package views

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"medicare-pms/internal/models"
)

// CSVHeader is the first line of the daily report export.
const CSVHeader = "Time,Patient Name,Phone,Age,Disease,Diagnosis,Prescription"

// CSVTimeLayout renders the visit time column.
const CSVTimeLayout = "3:04:05 PM"

// ReportRow is one visit of the day paired with its owner.
type ReportRow struct {
	PatientID   string       `json:"patient_id"`
	PatientName string       `json:"patient_name"`
	Phone       string       `json:"phone"`
	Age         int          `json:"age"`
	Visit       models.Visit `json:"visit"`
}

// DailyReport is the on-screen summary for one calendar day.
type DailyReport struct {
	Date  string      `json:"date"`
	Count int         `json:"count"`
	Rows  []ReportRow `json:"rows"`
}

// Stats backs the admin dashboard cards. UpdatedToday counts patients last
// touched today, VisitsToday counts visits; they differ whenever a patient
// came twice or an old patient was only edited.
type Stats struct {
	TotalPatients int `json:"total_patients"`
	UpdatedToday  int `json:"updated_today"`
	VisitsToday   int `json:"visits_today"`
}

// DayBounds returns [midnight, next midnight) of day in day's location.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// SameDay reports whether t falls on the calendar day of day, in day's location.
func SameDay(t, day time.Time) bool {
	start, end := DayBounds(day)
	return !t.Before(start) && t.Before(end)
}

// DailyVisits flattens every visit of every patient, keeps those on day and
// orders them by visit time, newest first.
func DailyVisits(patients []models.Patient, day time.Time) []ReportRow {
	rows := make([]ReportRow, 0)
	for _, p := range patients {
		for _, v := range p.MedicalHistory {
			if !SameDay(v.Date, day) {
				continue
			}
			rows = append(rows, ReportRow{
				PatientID:   p.ID,
				PatientName: p.Name,
				Phone:       p.Phone,
				Age:         p.Age,
				Visit:       v,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Visit.Date.After(rows[j].Visit.Date)
	})
	return rows
}

// BuildDailyReport wraps DailyVisits with its count and the ISO date.
func BuildDailyReport(patients []models.Patient, day time.Time) DailyReport {
	rows := DailyVisits(patients, day)
	return DailyReport{
		Date:  day.Format(time.DateOnly),
		Count: len(rows),
		Rows:  rows,
	}
}

// CountUpdatedOn counts patients whose updated_at falls on day.
func CountUpdatedOn(patients []models.Patient, day time.Time) int {
	n := 0
	for _, p := range patients {
		if SameDay(p.UpdatedAt, day) {
			n++
		}
	}
	return n
}

func BuildStats(patients []models.Patient, day time.Time) Stats {
	return Stats{
		TotalPatients: len(patients),
		UpdatedToday:  CountUpdatedOn(patients, day),
		VisitsToday:   len(DailyVisits(patients, day)),
	}
}

// ReportFilename is the download name of the CSV for day.
func ReportFilename(day time.Time) string {
	return "Medical_Daily_Report_" + day.Format(time.DateOnly) + ".csv"
}

// WriteCSV encodes rows in the export format: every field wrapped in double
// quotes with inner quotes doubled, every line ending in "\n". Times are
// rendered in loc.
func WriteCSV(w io.Writer, rows []ReportRow, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	if _, err := io.WriteString(w, CSVHeader+"\n"); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			r.Visit.Date.In(loc).Format(CSVTimeLayout),
			r.PatientName,
			r.Phone,
			strconv.Itoa(r.Age),
			r.Visit.Disease,
			r.Visit.Diagnosis,
			r.Visit.Prescription,
		}
		if _, err := io.WriteString(w, csvLine(fields)); err != nil {
			return err
		}
	}
	return nil
}

// ReportCSV is WriteCSV into a string.
func ReportCSV(rows []ReportRow, loc *time.Location) string {
	var b strings.Builder
	_ = WriteCSV(&b, rows, loc)
	return b.String()
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}
