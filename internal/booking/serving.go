package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ServingTracker records which booking each clinician is presently
// attending, independent of the booking's own status. One entry per
// (department, doctor) pair; each set overwrites the entry wholesale and
// the last commit to complete wins. Entries persist to their own document,
// separate from the ledger's.
type ServingTracker struct {
	mu      sync.Mutex
	entries map[string]*ServingEntry

	ledger *Service
	store  Store
	now    func() time.Time
}

func NewServingTracker(ctx context.Context, ledger *Service, store Store) *ServingTracker {
	entries, err := store.LoadServing(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load current tokens failed, starting empty")
		entries = make(map[string]*ServingEntry)
	}
	log.Info().Int("entries", len(entries)).Msg("current-serving table loaded")

	return &ServingTracker{
		entries: entries,
		ledger:  ledger,
		store:   store,
		now:     time.Now,
	}
}

func servingKey(department, doctorName string) string {
	return strings.ToLower(department + "_" + doctorName)
}

// SetCurrentToken marks tokenID as the booking the doctor is now serving.
// The booking must exist and belong to the supplied department
// (case-insensitive). Returns the token number being served.
func (t *ServingTracker) SetCurrentToken(ctx context.Context, department, doctorName, tokenID string) (int, error) {
	b, err := t.ledger.GetBooking(tokenID)
	if err != nil {
		return 0, err
	}
	if string(b.Department) != strings.ToLower(strings.TrimSpace(department)) {
		return 0, fmt.Errorf("%w: token is for %s, not %s", ErrWrongDepartment, b.Department, department)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := servingKey(department, doctorName)
	prev, hadPrev := t.entries[key]

	t.entries[key] = &ServingEntry{
		Department:         department,
		DoctorName:         doctorName,
		CurrentTokenID:     tokenID,
		CurrentTokenNumber: b.TokenNumber,
		PatientName:        b.PatientName,
		UpdatedAt:          t.now(),
	}

	if err := t.store.SaveServing(ctx, t.entries); err != nil {
		if hadPrev {
			t.entries[key] = prev
		} else {
			delete(t.entries, key)
		}
		return 0, fmt.Errorf("persist current token: %w", err)
	}

	log.Info().
		Str("doctor", doctorName).
		Str("department", department).
		Int("token_number", b.TokenNumber).
		Msg("current token set")
	return b.TokenNumber, nil
}

// GetCurrentToken looks up a clinician by name alone, across departments.
// Returns the first case-insensitive match or ErrServingNotFound.
func (t *ServingTracker) GetCurrentToken(doctorName string) (*ServingEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if strings.EqualFold(e.DoctorName, doctorName) {
			out := *e
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrServingNotFound, doctorName)
}
