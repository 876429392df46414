package store

import (
	"context"
	"errors"
	"fmt"

	"medicare-pms/internal/models"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertAttempts bounds retries when two transactions race to register the
// same new phone. Depending on timing InnoDB rejects the loser either through
// the unique index or as a deadlock between the two gap locks.
const upsertAttempts = 3

const mysqlDeadlock = 1213

// retryableUpsert reports whether a failed upsert transaction was rolled back
// by a concurrent writer and can simply be run again.
func retryableUpsert(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDeadlock
}

// GormStore persists patients in a relational database: one row per patient,
// one row per visit. The DB must be opened with TranslateError enabled.
type GormStore struct {
	db     *gorm.DB
	opts   options
	logger zerolog.Logger
}

func NewGormStore(db *gorm.DB, logger zerolog.Logger, opts ...Option) *GormStore {
	return &GormStore{
		db:     db,
		opts:   buildOptions(opts),
		logger: logger.With().Str("store", "gorm").Logger(),
	}
}

// Migrate creates or updates the patients and visits tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Patient{}, &models.Visit{})
}

func newestVisitsFirst(db *gorm.DB) *gorm.DB {
	return db.Order("seq DESC")
}

func (s *GormStore) ListAll(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.WithContext(ctx).
		Preload("MedicalHistory", newestVisitsFirst).
		Order("created_at DESC").
		Order("id").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *GormStore) Upsert(ctx context.Context, sub models.PatientSubmission) (UpsertResult, error) {
	if err := sub.Validate(); err != nil {
		return UpsertResult{}, err
	}

	var (
		res UpsertResult
		err error
	)
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		res, err = s.upsertOnce(ctx, sub)
		if err == nil || !retryableUpsert(err) {
			break
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("concurrent registration for the same phone, retrying")
	}
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert patient: %w", err)
	}
	return res, nil
}

func (s *GormStore) upsertOnce(ctx context.Context, sub models.PatientSubmission) (UpsertResult, error) {
	var res UpsertResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.opts.now()
		visit := sub.NewVisit(s.opts.newID(), visitTime(sub, now))

		var existing models.Patient
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone = ?", sub.Phone).
			Take(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p := newPatient(s.opts.newID(), sub, visit, now)
			if err := tx.Omit("MedicalHistory").Create(&p).Error; err != nil {
				return err
			}
			visit.PatientID = p.ID
			visit.Seq = 1
			if err := tx.Create(&visit).Error; err != nil {
				return err
			}
			res = UpsertResult{ID: p.ID, VisitID: visit.ID}
			return nil

		case err != nil:
			return err
		}

		var maxSeq int64
		if err := tx.Model(&models.Visit{}).
			Where("patient_id = ?", existing.ID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}

		visit.PatientID = existing.ID
		visit.Seq = maxSeq + 1
		if err := tx.Create(&visit).Error; err != nil {
			return err
		}

		existing.ApplyDemographics(sub)
		existing.ApplyVisit(visit)
		touch(&existing, now)
		if err := tx.Omit("MedicalHistory").Save(&existing).Error; err != nil {
			return err
		}

		res = UpsertResult{ID: existing.ID, VisitID: visit.ID, Existing: true}
		return nil
	})
	return res, err
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormStore) FindByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	return s.findOne(ctx, "phone = ?", phone)
}

func (s *GormStore) findOne(ctx context.Context, query string, arg string) (*models.Patient, error) {
	var p models.Patient
	err := s.db.WithContext(ctx).
		Preload("MedicalHistory", newestVisitsFirst).
		Where(query, arg).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return &p, nil
}

func (s *GormStore) UpdateDemographics(ctx context.Context, id string, u models.DemographicsUpdate) (*models.Patient, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Patient
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatientNotFound
		}
		if err != nil {
			return err
		}
		u.Apply(&p)
		touch(&p, s.opts.now())
		return tx.Omit("MedicalHistory").Save(&p).Error
	})
	if errors.Is(err, ErrPatientNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update patient %s: %w", id, err)
	}
	return s.FindByID(ctx, id)
}

func (s *GormStore) Import(ctx context.Context, patients []models.Patient) (int, error) {
	for _, p := range patients {
		if err := validateImport(p); err != nil {
			return 0, err
		}
	}

	n := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patients {
			var count int64
			if err := tx.Model(&models.Patient{}).
				Where("phone = ? OR id = ?", p.Phone, p.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			row := importRecord(p)
			history := row.MedicalHistory
			if err := tx.Omit("MedicalHistory").Create(&row).Error; err != nil {
				return err
			}
			for i := range history {
				history[i].PatientID = row.ID
				history[i].Seq = int64(len(history) - i)
			}
			if len(history) > 0 {
				if err := tx.Create(&history).Error; err != nil {
					return err
				}
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import patients: %w", err)
	}
	return n, nil
}
