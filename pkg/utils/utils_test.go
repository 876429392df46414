package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential(t *testing.T) {
	cred, err := NewCredential("admin", "admin")
	require.NoError(t, err)

	assert.True(t, cred.Match("admin", "admin"))
	assert.False(t, cred.Match("admin", "wrong"))
	assert.False(t, cred.Match("root", "admin"))
}

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken(secret, "admin", "medical", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "medical", claims.Role)
}

func TestToken_Rejects(t *testing.T) {
	secret := []byte("test-secret")

	expired, err := GenerateToken(secret, "admin", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(secret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := GenerateToken([]byte("other"), "admin", "admin", time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(secret, other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken(secret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStringToInt(t *testing.T) {
	n, err := StringToInt(" 45 ")
	require.NoError(t, err)
	assert.Equal(t, 45, n)

	_, err = StringToInt("forty")
	assert.Error(t, err)

	assert.Equal(t, 10, QueryInt("", 10))
	assert.Equal(t, 25, QueryInt("25", 10))
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	now := time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC)

	day, err := ParseDay("", loc, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", day.Format(time.DateOnly))

	day, err = ParseDay("2025-01-31", loc, now)
	require.NoError(t, err)
	assert.Equal(t, loc, day.Location())
	assert.Equal(t, 31, day.Day())

	_, err = ParseDay("31/01/2025", loc, now)
	assert.Error(t, err)
}

type fakeSender struct {
	got *messaging.Message
	err error
}

func (f *fakeSender) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.got = m
	return "msg-1", f.err
}

func TestFCMNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := newFCMNotifier(sender, "pharmacy", zerolog.Nop())

	err := n.PrescriptionRecorded(context.Background(), PrescriptionNotice{
		PatientID: "p1", PatientName: "Sarah", Prescription: "Lisinopril", Existing: true,
	})
	require.NoError(t, err)
	require.NotNil(t, sender.got)
	assert.Equal(t, "pharmacy", sender.got.Topic)
	assert.Equal(t, "Sarah: Lisinopril", sender.got.Notification.Body)
	assert.Equal(t, "p1", sender.got.Data["patient_id"])

	sender.err = errors.New("unavailable")
	assert.Error(t, n.PrescriptionRecorded(context.Background(), PrescriptionNotice{}))
}
