package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Service, *ServingTracker) {
	t.Helper()
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(context.Background(), store, NewMutexLocker())
	return svc, NewServingTracker(context.Background(), svc, store)
}

func TestSetCurrentToken(t *testing.T) {
	svc, tracker := newTestTracker(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, testRequest("9876543210", DeptCardiology, NewDate(2025, time.June, 2)))
	require.NoError(t, err)

	n, err := tracker.SetCurrentToken(ctx, "cardiology", "Dr. Sharma", b.TokenID)
	require.NoError(t, err)
	assert.Equal(t, b.TokenNumber, n)

	entry, err := tracker.GetCurrentToken("Dr. Sharma")
	require.NoError(t, err)
	assert.Equal(t, b.TokenID, entry.CurrentTokenID)
	assert.Equal(t, b.PatientName, entry.PatientName)
}

func TestSetCurrentTokenDepartmentIsCaseInsensitive(t *testing.T) {
	svc, tracker := newTestTracker(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, testRequest("9876543210", DeptCardiology, NewDate(2025, time.June, 2)))
	require.NoError(t, err)

	_, err = tracker.SetCurrentToken(ctx, "Cardiology", "Dr. Sharma", b.TokenID)
	require.NoError(t, err)
}

func TestSetCurrentTokenWrongDepartment(t *testing.T) {
	svc, tracker := newTestTracker(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, testRequest("9876543210", DeptCardiology, NewDate(2025, time.June, 2)))
	require.NoError(t, err)

	_, err = tracker.SetCurrentToken(ctx, "dental", "Dr. Sharma", b.TokenID)
	require.ErrorIs(t, err, ErrWrongDepartment)
}

func TestSetCurrentTokenUnknownToken(t *testing.T) {
	_, tracker := newTestTracker(t)

	_, err := tracker.SetCurrentToken(context.Background(), "cardiology", "Dr. Sharma", "no-such-token")
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSetCurrentTokenOverwrites(t *testing.T) {
	svc, tracker := newTestTracker(t)
	ctx := context.Background()
	date := NewDate(2025, time.June, 2)

	b1, err := svc.CreateBooking(ctx, testRequest("9000000001", DeptCardiology, date))
	require.NoError(t, err)
	b2, err := svc.CreateBooking(ctx, testRequest("9000000002", DeptCardiology, date))
	require.NoError(t, err)

	_, err = tracker.SetCurrentToken(ctx, "cardiology", "Dr. Sharma", b1.TokenID)
	require.NoError(t, err)
	_, err = tracker.SetCurrentToken(ctx, "cardiology", "Dr. Sharma", b2.TokenID)
	require.NoError(t, err)

	// No history: the entry holds only the latest token.
	entry, err := tracker.GetCurrentToken("Dr. Sharma")
	require.NoError(t, err)
	assert.Equal(t, b2.TokenID, entry.CurrentTokenID)
}

func TestGetCurrentTokenNone(t *testing.T) {
	_, tracker := newTestTracker(t)

	_, err := tracker.GetCurrentToken("Dr. Nobody")
	require.ErrorIs(t, err, ErrServingNotFound)
}

func TestGetCurrentTokenCaseInsensitiveDoctor(t *testing.T) {
	svc, tracker := newTestTracker(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, testRequest("9876543210", DeptCardiology, NewDate(2025, time.June, 2)))
	require.NoError(t, err)
	_, err = tracker.SetCurrentToken(ctx, "cardiology", "Dr. Sharma", b.TokenID)
	require.NoError(t, err)

	entry, err := tracker.GetCurrentToken("dr. sharma")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sharma", entry.DoctorName)
}

func TestTrackerReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	svc := NewService(ctx, store, NewMutexLocker())
	b, err := svc.CreateBooking(ctx, testRequest("9876543210", DeptCardiology, NewDate(2025, time.June, 2)))
	require.NoError(t, err)

	tracker := NewServingTracker(ctx, svc, store)
	_, err = tracker.SetCurrentToken(ctx, "cardiology", "Dr. Sharma", b.TokenID)
	require.NoError(t, err)

	tracker2 := NewServingTracker(ctx, svc, store)
	entry, err := tracker2.GetCurrentToken("Dr. Sharma")
	require.NoError(t, err)
	assert.Equal(t, b.TokenID, entry.CurrentTokenID)
}
