package models

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the three accepted values.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Visit is one consultation. It is never edited after it is written.
type Visit struct {
	ID        string `gorm:"primaryKey;size:36" json:"id" firestore:"id"`
	PatientID string `gorm:"index;size:36;not null" json:"-" firestore:"-"`
	// Seq orders the history inside the database; higher is newer.
	Seq          int64     `gorm:"not null" json:"-" firestore:"-"`
	Date         time.Time `json:"date" firestore:"date"`
	Disease      string    `gorm:"size:255" json:"disease" firestore:"disease"`
	Diagnosis    string    `gorm:"type:text" json:"diagnosis" firestore:"diagnosis"`
	Prescription string    `gorm:"type:text" json:"prescription" firestore:"prescription"`
	Notes        string    `gorm:"type:text" json:"notes" firestore:"notes"`
}

// Patient is keyed by phone. MedicalHistory is newest-first and the
// Diseases/Diagnosis/Prescription/Notes fields mirror MedicalHistory[0].
type Patient struct {
	ID      string `gorm:"primaryKey;size:36" json:"id" firestore:"id"`
	Name    string `gorm:"size:100;not null" json:"name" firestore:"name"`
	Age     int    `gorm:"not null" json:"age" firestore:"age"`
	Gender  Gender `gorm:"size:10;not null" json:"gender" firestore:"gender"`
	Phone   string `gorm:"size:20;uniqueIndex;not null" json:"phone" firestore:"phone"`
	Address string `gorm:"type:text" json:"address" firestore:"address"`

	// Latest condition
	Diseases     string `gorm:"size:255" json:"diseases" firestore:"diseases"`
	Diagnosis    string `gorm:"type:text" json:"diagnosis" firestore:"diagnosis"`
	Prescription string `gorm:"type:text" json:"prescription" firestore:"prescription"`
	Notes        string `gorm:"type:text" json:"notes" firestore:"notes"`

	CreatedBy string    `gorm:"size:100" json:"created_by" firestore:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at" firestore:"updated_at"`

	MedicalHistory []Visit `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"medicalHistory" firestore:"medical_history"`
}

// Clone returns a deep copy so callers can never reach into store state.
func (p Patient) Clone() Patient {
	out := p
	if p.MedicalHistory != nil {
		out.MedicalHistory = make([]Visit, len(p.MedicalHistory))
		copy(out.MedicalHistory, p.MedicalHistory)
	}
	return out
}

// LatestVisit returns MedicalHistory[0], or false when there is no history.
func (p Patient) LatestVisit() (Visit, bool) {
	if len(p.MedicalHistory) == 0 {
		return Visit{}, false
	}
	return p.MedicalHistory[0], true
}

// ApplyVisit prepends v to the history and refreshes the current-condition
// mirror from it. Both must always change together.
func (p *Patient) ApplyVisit(v Visit) {
	history := make([]Visit, 0, len(p.MedicalHistory)+1)
	history = append(history, v)
	history = append(history, p.MedicalHistory...)
	p.MedicalHistory = history
	p.SyncCondition()
}

// SyncCondition copies MedicalHistory[0] into the current-condition fields.
func (p *Patient) SyncCondition() {
	latest, ok := p.LatestVisit()
	if !ok {
		return
	}
	p.Diseases = latest.Disease
	p.Diagnosis = latest.Diagnosis
	p.Prescription = latest.Prescription
	p.Notes = latest.Notes
}

// ApplyDemographics overwrites the demographic fields from a submission.
func (p *Patient) ApplyDemographics(s PatientSubmission) {
	p.Name = s.Name
	p.Age = s.Age
	p.Gender = s.Gender
	p.Phone = s.Phone
	p.Address = s.Address
	p.CreatedBy = s.CreatedBy
}

// PatientSubmission is one consultation form as the store receives it.
type PatientSubmission struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Gender  Gender `json:"gender"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	Diseases     string `json:"diseases"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`

	CreatedBy   string    `json:"created_by"`
	SubmittedAt time.Time `json:"updated_at"`
}

// Validate checks the submission before any store mutation.
func (s PatientSubmission) Validate() error {
	if strings.TrimSpace(s.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	if s.Age < 0 {
		return &ValidationError{Field: "age", Reason: "must not be negative"}
	}
	if !s.Gender.Valid() {
		return &ValidationError{Field: "gender", Reason: "must be Male, Female or Other"}
	}
	return nil
}

// NewVisit builds the Visit this submission records.
func (s PatientSubmission) NewVisit(id string, at time.Time) Visit {
	return Visit{
		ID:           id,
		Date:         at,
		Disease:      s.Diseases,
		Diagnosis:    s.Diagnosis,
		Prescription: s.Prescription,
		Notes:        s.Notes,
	}
}

// PatientFormInput is what the admin dashboard form posts. Age arrives as
// the raw text of the input box.
type PatientFormInput struct {
	Name         string    `json:"name" binding:"required"`
	Age          string    `json:"age" binding:"required"`
	Gender       Gender    `json:"gender" binding:"required,oneof=Male Female Other"`
	Phone        string    `json:"phone" binding:"required"`
	Address      string    `json:"address"`
	Diseases     string    `json:"diseases"`
	Diagnosis    string    `json:"diagnosis"`
	Prescription string    `json:"prescription"`
	Notes        string    `json:"notes"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DemographicsUpdate edits a patient without recording a visit. Nil fields
// are left alone. Phone is the identity key and cannot be changed here.
type DemographicsUpdate struct {
	Name    *string `json:"name"`
	Age     *int    `json:"age" binding:"omitempty,min=0"`
	Gender  *Gender `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Address *string `json:"address"`
}

// Validate mirrors the submission rules for the fields that are present.
func (u DemographicsUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if u.Age != nil && *u.Age < 0 {
		return &ValidationError{Field: "age", Reason: "must not be negative"}
	}
	if u.Gender != nil && !u.Gender.Valid() {
		return &ValidationError{Field: "gender", Reason: "must be Male, Female or Other"}
	}
	return nil
}

// Apply writes the present fields onto p.
func (u DemographicsUpdate) Apply(p *Patient) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Address != nil {
		p.Address = *u.Address
	}
}
