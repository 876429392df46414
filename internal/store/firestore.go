package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"medicare-pms/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection holds one document per patient with the visit list embedded.
const DefaultCollection = "patients"

// transactionAttempts covers several clerks saving visits for one phone at once.
const transactionAttempts = 10

// FirestoreStore keys each document by an encoding of the phone number, so
// the "one patient per phone" rule is enforced by the document id itself and
// every upsert runs inside a Firestore transaction.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	opts       options
	logger     zerolog.Logger
}

func NewFirestoreStore(client *firestore.Client, collection string, logger zerolog.Logger, opts ...Option) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{
		client:     client,
		collection: collection,
		opts:       buildOptions(opts),
		logger:     logger.With().Str("store", "firestore").Logger(),
	}
}

// phoneKey maps a phone to a legal document id ('/' is not allowed).
func phoneKey(phone string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(phone))
}

func (s *FirestoreStore) patients() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *FirestoreStore) ListAll(ctx context.Context) ([]models.Patient, error) {
	iter := s.patients().OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var out []models.Patient
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list patients: %w", err)
		}
		var p models.Patient
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode patient %s: %w", doc.Ref.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, sub models.PatientSubmission) (UpsertResult, error) {
	if err := sub.Validate(); err != nil {
		return UpsertResult{}, err
	}

	ref := s.patients().Doc(phoneKey(sub.Phone))
	var res UpsertResult

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := s.opts.now()
		visit := sub.NewVisit(s.opts.newID(), visitTime(sub, now))

		snap, err := tx.Get(ref)
		if isNotFound(err) {
			p := newPatient(s.opts.newID(), sub, visit, now)
			res = UpsertResult{ID: p.ID, VisitID: visit.ID}
			return tx.Create(ref, p)
		}
		if err != nil {
			return err
		}

		var p models.Patient
		if err := snap.DataTo(&p); err != nil {
			return err
		}
		p.ApplyDemographics(sub)
		p.ApplyVisit(visit)
		touch(&p, now)

		res = UpsertResult{ID: p.ID, VisitID: visit.ID, Existing: true}
		return tx.Set(ref, p)
	}, firestore.MaxAttempts(transactionAttempts))
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert patient: %w", err)
	}
	return res, nil
}

func (s *FirestoreStore) FindByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	snap, err := s.patients().Doc(phoneKey(phone)).Get(ctx)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find patient by phone: %w", err)
	}
	var p models.Patient
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode patient: %w", err)
	}
	return &p, nil
}

func (s *FirestoreStore) byIDQuery(id string) firestore.Query {
	return s.patients().Where("id", "==", id).Limit(1)
}

func (s *FirestoreStore) FindByID(ctx context.Context, id string) (*models.Patient, error) {
	docs, err := s.byIDQuery(id).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find patient %s: %w", id, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var p models.Patient
	if err := docs[0].DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode patient: %w", err)
	}
	return &p, nil
}

func (s *FirestoreStore) UpdateDemographics(ctx context.Context, id string, u models.DemographicsUpdate) (*models.Patient, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var out models.Patient
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(s.byIDQuery(id)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return ErrPatientNotFound
		}
		var p models.Patient
		if err := docs[0].DataTo(&p); err != nil {
			return err
		}
		u.Apply(&p)
		touch(&p, s.opts.now())
		out = p
		return tx.Set(docs[0].Ref, p)
	}, firestore.MaxAttempts(transactionAttempts))
	if errors.Is(err, ErrPatientNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("update patient %s: %w", id, err)
	}
	return &out, nil
}

func (s *FirestoreStore) Import(ctx context.Context, patients []models.Patient) (int, error) {
	for _, p := range patients {
		if err := validateImport(p); err != nil {
			return 0, err
		}
	}

	n := 0
	for _, p := range patients {
		_, err := s.patients().Doc(phoneKey(p.Phone)).Create(ctx, importRecord(p))
		if status.Code(err) == codes.AlreadyExists {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("import patient %s: %w", p.ID, err)
		}
		n++
	}
	s.logger.Debug().Int("imported", n).Msg("import finished")
	return n, nil
}
