package seed

import (
	"context"
	"testing"
	"time"

	"medicare-pms/internal/store"
	"medicare-pms/internal/views"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoPatients_Invariants(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	phones := map[string]bool{}
	for _, p := range DemoPatients(now) {
		require.NotEmpty(t, p.MedicalHistory)
		assert.False(t, phones[p.Phone], "duplicate phone %s", p.Phone)
		phones[p.Phone] = true

		latest := p.MedicalHistory[0]
		assert.Equal(t, latest.Disease, p.Diseases)
		assert.Equal(t, latest.Prescription, p.Prescription)
	}
}

func TestLoad_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore(zerolog.Nop())

	require.NoError(t, Load(ctx, s, now, zerolog.Nop()))
	require.NoError(t, Load(ctx, s, now, zerolog.Nop()))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stats := views.BuildStats(all, now)
	assert.Equal(t, 1, stats.UpdatedToday)
	assert.Equal(t, 1, stats.VisitsToday)
}
