// Package store owns the patient records and the phone-keyed upsert that
// either registers a new patient or appends a visit to an existing one.
package store

import (
	"context"
	"errors"
	"time"

	"medicare-pms/internal/models"

	"github.com/google/uuid"
)

// ErrPatientNotFound is only returned by writes that target an id.
// Lookups report absence as a nil patient.
var ErrPatientNotFound = errors.New("patient not found")

// Store is the record store contract used by handlers, the seeder and the
// report command. Every backend keeps the same invariants:
//   - at most one Patient per phone
//   - MedicalHistory is newest-first and never empty
//   - the current-condition fields equal MedicalHistory[0]
type Store interface {
	// ListAll returns a deep copy of every patient in store order.
	ListAll(ctx context.Context) ([]models.Patient, error)
	// Upsert registers a new patient or appends a visit to the patient with
	// the same phone. It returns the patient id and whether it already existed.
	Upsert(ctx context.Context, sub models.PatientSubmission) (UpsertResult, error)
	FindByID(ctx context.Context, id string) (*models.Patient, error)
	FindByPhone(ctx context.Context, phone string) (*models.Patient, error)
	// UpdateDemographics edits name/age/gender/address without adding a visit.
	UpdateDemographics(ctx context.Context, id string, u models.DemographicsUpdate) (*models.Patient, error)
	// Import inserts fully formed patients whose phone is not present yet.
	Import(ctx context.Context, patients []models.Patient) (int, error)
}

// UpsertResult tells the caller which branch of the upsert ran.
type UpsertResult struct {
	ID       string `json:"id"`
	VisitID  string `json:"visit_id"`
	Existing bool   `json:"existing"`
}

// Option configures clock and id generation, shared by all backends.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func defaultOptions() options {
	return options{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time used to stamp updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides UUIDv4 generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// visitTime picks the submission timestamp, falling back to the store clock.
func visitTime(sub models.PatientSubmission, now time.Time) time.Time {
	if sub.SubmittedAt.IsZero() {
		return now
	}
	return sub.SubmittedAt
}

// newPatient builds the record for a phone the store has not seen.
func newPatient(id string, sub models.PatientSubmission, v models.Visit, now time.Time) models.Patient {
	p := models.Patient{ID: id}
	p.ApplyDemographics(sub)
	p.ApplyVisit(v)
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

// touch keeps updated_at monotonic even if the clock steps backwards.
func touch(p *models.Patient, now time.Time) {
	if now.After(p.UpdatedAt) {
		p.UpdatedAt = now
	}
}

func validateImport(p models.Patient) error {
	if p.ID == "" {
		return &models.ValidationError{Field: "id", Reason: "is required"}
	}
	if len(p.MedicalHistory) == 0 {
		return &models.ValidationError{Field: "medicalHistory", Reason: "must not be empty"}
	}
	return models.PatientSubmission{Phone: p.Phone, Age: p.Age, Gender: p.Gender}.Validate()
}

// importRecord is the copy of p a backend writes: the current condition is
// always re-derived from the newest visit, never taken from the input.
func importRecord(p models.Patient) models.Patient {
	out := p.Clone()
	out.SyncCondition()
	return out
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)
