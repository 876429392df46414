// Package seed loads the demo patients used by development builds.
package seed

import (
	"context"
	"fmt"
	"time"

	"medicare-pms/internal/models"
	"medicare-pms/internal/store"

	"github.com/rs/zerolog"
)

const day = 24 * time.Hour

// DemoPatients returns the three sample records, dated relative to now:
// one seen today (with an older visit), one yesterday, one two days ago.
func DemoPatients(now time.Time) []models.Patient {
	yesterday := now.Add(-day)
	twoDaysAgo := now.Add(-2 * day)

	sarah := models.Patient{
		ID: "1", Name: "Sarah Jenkins", Age: 45, Gender: models.GenderFemale,
		Phone: "555-0123", Address: "42 Wellness Blvd, Health City",
		CreatedBy: "admin", CreatedAt: now.Add(-60 * day), UpdatedAt: now,
		MedicalHistory: []models.Visit{
			{
				ID: "visit-1", Date: now, Disease: "Hypertension",
				Diagnosis:    "Stage 1 Hypertension monitored.",
				Prescription: "Lisinopril 10mg daily",
				Notes:        "Patient advised to reduce salt intake.",
			},
			{
				ID: "visit-old-1", Date: now.Add(-60 * day), Disease: "Seasonal Allergies",
				Diagnosis:    "Pollen allergy reaction.",
				Prescription: "Cetirizine 10mg for 5 days",
				Notes:        "Completed course.",
			},
		},
	}
	michael := models.Patient{
		ID: "2", Name: "Michael Chen", Age: 28, Gender: models.GenderMale,
		Phone: "555-9876", Address: "88 Recovery Lane",
		CreatedBy: "admin", CreatedAt: yesterday, UpdatedAt: yesterday,
		MedicalHistory: []models.Visit{{
			ID: "visit-2", Date: yesterday, Disease: "Acute Bronchitis",
			Diagnosis:    "Viral infection, symptomatic treatment.",
			Prescription: "Cough syrup, Ibuprofen 400mg",
			Notes:        "Follow up in 1 week if symptoms persist.",
		}},
	}
	emily := models.Patient{
		ID: "3", Name: "Emily Davis", Age: 62, Gender: models.GenderFemale,
		Phone: "555-4567", Address: "123 Senior Care Dr",
		CreatedBy: "admin", CreatedAt: twoDaysAgo, UpdatedAt: twoDaysAgo,
		MedicalHistory: []models.Visit{{
			ID: "visit-3", Date: twoDaysAgo, Disease: "Type 2 Diabetes",
			Diagnosis:    "Uncontrolled blood sugar levels.",
			Prescription: "Metformin 500mg BD, Insulin Glargine",
			Notes:        "Referred to dietician.",
		}},
	}

	out := []models.Patient{sarah, michael, emily}
	for i := range out {
		v := out[i].MedicalHistory[0]
		out[i].Diseases = v.Disease
		out[i].Diagnosis = v.Diagnosis
		out[i].Prescription = v.Prescription
		out[i].Notes = v.Notes
	}
	return out
}

// Load imports the demo patients whose phone is not registered yet.
func Load(ctx context.Context, s store.Store, now time.Time, logger zerolog.Logger) error {
	n, err := s.Import(ctx, DemoPatients(now))
	if err != nil {
		return fmt.Errorf("seed demo patients: %w", err)
	}
	logger.Info().Int("patients", n).Msg("demo data loaded")
	return nil
}
