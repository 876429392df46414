// Package views derives dashboard projections from a store snapshot. Every
// function is pure: it never mutates its input and never fails on empty data.
package views

import (
	"sort"
	"strings"

	"medicare-pms/internal/models"
)

// Field selects which patient attributes a text search looks at.
type Field uint8

const (
	FieldName Field = 1 << iota
	FieldPhone
	FieldDisease
	FieldPrescription
	FieldDiagnosis
	FieldID
)

const (
	// CanonicalFields is the match set shared by both dashboards.
	CanonicalFields = FieldName | FieldPhone | FieldDisease | FieldPrescription
	// AdminFields lets reception also paste a patient id.
	AdminFields = CanonicalFields | FieldID
	// MedicalFields lets the medical store also search diagnosis text.
	MedicalFields = CanonicalFields | FieldDiagnosis
)

// MinAutofillPhoneLen is the length the phone input must exceed before a
// lookup is attempted.
const MinAutofillPhoneLen = 5

// SortByRecency returns a copy ordered by updated_at, newest first. Ties keep
// their snapshot order.
func SortByRecency(patients []models.Patient) []models.Patient {
	out := make([]models.Patient, len(patients))
	copy(out, patients)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Filter keeps the patients where query appears, case-insensitively, in any
// of the selected fields. A blank query returns the snapshot unchanged.
func Filter(patients []models.Patient, query string, fields Field) []models.Patient {
	if strings.TrimSpace(query) == "" {
		return patients
	}
	needle := strings.ToLower(query)

	out := make([]models.Patient, 0)
	for _, p := range patients {
		if Matches(p, needle, fields) {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether the lower-cased needle occurs in one of fields.
func Matches(p models.Patient, needle string, fields Field) bool {
	for _, v := range fieldValues(p, fields) {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func fieldValues(p models.Patient, fields Field) []string {
	values := make([]string, 0, 6)
	if fields&FieldName != 0 {
		values = append(values, p.Name)
	}
	if fields&FieldPhone != 0 {
		values = append(values, p.Phone)
	}
	if fields&FieldDisease != 0 {
		values = append(values, p.Diseases)
	}
	if fields&FieldPrescription != 0 {
		values = append(values, p.Prescription)
	}
	if fields&FieldDiagnosis != 0 {
		values = append(values, p.Diagnosis)
	}
	if fields&FieldID != 0 {
		values = append(values, p.ID)
	}
	return values
}

// Autofill is what the registration form pre-fills when the typed phone
// belongs to a known patient.
type Autofill struct {
	Existing bool            `json:"existing"`
	Patient  *models.Patient `json:"patient,omitempty"`
}

// LookupPhone finds the first patient whose phone equals the typed value,
// ignoring surrounding blanks. Inputs of MinAutofillPhoneLen characters or
// fewer never match.
func LookupPhone(patients []models.Patient, phone string) Autofill {
	phone = strings.TrimSpace(phone)
	if len(phone) <= MinAutofillPhoneLen {
		return Autofill{}
	}
	for i := range patients {
		if patients[i].Phone == phone {
			p := patients[i].Clone()
			return Autofill{Existing: true, Patient: &p}
		}
	}
	return Autofill{}
}

// Truncate keeps at most limit entries; limit <= 0 means everything.
func Truncate(patients []models.Patient, limit int) []models.Patient {
	if limit <= 0 || limit >= len(patients) {
		return patients
	}
	return patients[:limit]
}

// History returns a copy of the visits of p in stored order: the most
// recently recorded visit first, whatever date it carries.
func History(p models.Patient) []models.Visit {
	out := make([]models.Visit, len(p.MedicalHistory))
	copy(out, p.MedicalHistory)
	return out
}
