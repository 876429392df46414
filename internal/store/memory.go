package store

import (
	"context"
	"sync"

	"medicare-pms/internal/models"

	"github.com/rs/zerolog"
)

// MemoryStore keeps every patient in process. A single RWMutex serialises
// writers, so the phone lookup and the write in Upsert cannot interleave
// with another Upsert; readers copy under the read lock.
type MemoryStore struct {
	mu       sync.RWMutex
	patients []*models.Patient // store order, newest registration first
	byPhone  map[string]*models.Patient
	byID     map[string]*models.Patient

	opts   options
	logger zerolog.Logger
}

func NewMemoryStore(logger zerolog.Logger, opts ...Option) *MemoryStore {
	return &MemoryStore{
		byPhone: make(map[string]*models.Patient),
		byID:    make(map[string]*models.Patient),
		opts:    buildOptions(opts),
		logger:  logger.With().Str("store", "memory").Logger(),
	}
}

func (s *MemoryStore) ListAll(_ context.Context) ([]models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, sub models.PatientSubmission) (UpsertResult, error) {
	if err := sub.Validate(); err != nil {
		return UpsertResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.now()
	visit := sub.NewVisit(s.opts.newID(), visitTime(sub, now))

	if existing, ok := s.byPhone[sub.Phone]; ok {
		existing.ApplyDemographics(sub)
		existing.ApplyVisit(visit)
		touch(existing, now)

		s.logger.Debug().Str("patient_id", existing.ID).Int("visits", len(existing.MedicalHistory)).Msg("visit appended")
		return UpsertResult{ID: existing.ID, VisitID: visit.ID, Existing: true}, nil
	}

	id := s.nextPatientID()
	p := newPatient(id, sub, visit, now)
	s.insertFront(&p)

	s.logger.Debug().Str("patient_id", id).Msg("patient registered")
	return UpsertResult{ID: id, VisitID: visit.ID}, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

func (s *MemoryStore) FindByPhone(_ context.Context, phone string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byPhone[phone]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

func (s *MemoryStore) UpdateDemographics(_ context.Context, id string, u models.DemographicsUpdate) (*models.Patient, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	u.Apply(p)
	touch(p, s.opts.now())

	out := p.Clone()
	return &out, nil
}

// Import appends the given patients after the existing ones, skipping any
// phone that is already registered.
func (s *MemoryStore) Import(_ context.Context, patients []models.Patient) (int, error) {
	for _, p := range patients {
		if err := validateImport(p); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, p := range patients {
		if _, ok := s.byPhone[p.Phone]; ok {
			continue
		}
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		cp := importRecord(p)
		s.patients = append(s.patients, &cp)
		s.byPhone[cp.Phone] = &cp
		s.byID[cp.ID] = &cp
		n++
	}
	return n, nil
}

// nextPatientID retries on the (practically impossible) event of a collision
// so an id is never reused for a different patient.
func (s *MemoryStore) nextPatientID() string {
	for {
		id := s.opts.newID()
		if _, taken := s.byID[id]; !taken {
			return id
		}
		s.logger.Warn().Str("id", id).Msg("id collision, regenerating")
	}
}

func (s *MemoryStore) insertFront(p *models.Patient) {
	s.patients = append([]*models.Patient{p}, s.patients...)
	s.byPhone[p.Phone] = p
	s.byID[p.ID] = p
}
