package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Service is the booking ledger. It owns every Booking record: an
// in-memory map is the source of truth for reads, and every mutation is
// committed to the Store before the call returns. Mutations hold the write
// lock across the persist so a success reply always means a durable record;
// on a persist failure the in-memory change is rolled back and the error
// surfaced.
type Service struct {
	mu       sync.RWMutex
	bookings map[string]*Booking

	store  Store
	locker Locker
	now    func() time.Time
}

// NewService loads the ledger from the store. A load failure is logged and
// the ledger starts empty rather than refusing to boot.
func NewService(ctx context.Context, store Store, locker Locker) *Service {
	bookings, err := store.LoadBookings(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load bookings failed, starting with empty ledger")
		bookings = make(map[string]*Booking)
	}
	log.Info().Int("bookings", len(bookings)).Msg("booking ledger loaded")

	return &Service{
		bookings: bookings,
		store:    store,
		locker:   locker,
		now:      time.Now,
	}
}

// CreateBooking checks the one-active-booking-per-patient-per-day rule,
// assigns the next token number in the (department, date) partition and
// commits. The whole number-assign-insert-persist sequence runs under the
// partition lock so concurrent requests cannot double-assign a number.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *Booking
	err := s.locker.WithPartition(ctx, req.Department, req.BookingDate, func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		for _, b := range s.bookings {
			if b.PatientPhone == req.PatientPhone &&
				b.BookingDate.Equal(req.BookingDate) &&
				(b.Status == StatusPending || b.Status == StatusConfirmed) {
				return fmt.Errorf("%w: %s on %s", ErrBookingConflict, req.PatientPhone, req.BookingDate)
			}
		}

		now := s.now()
		b := &Booking{
			TokenID:      newTokenID(),
			PatientName:  req.PatientName,
			PatientPhone: req.PatientPhone,
			PatientAge:   req.PatientAge,
			Department:   req.Department,
			DoctorName:   req.DoctorName,
			BookingDate:  req.BookingDate,
			BookingTime:  req.BookingTime,
			TokenNumber:  s.nextTokenNumberLocked(req.Department, req.BookingDate),
			Status:       StatusPending,
			Symptoms:     req.Symptoms,
			Priority:     req.Priority,
			CreatedAt:    now,
			UpdatedAt:    now,
			Notes:        req.Notes,
		}

		s.bookings[b.TokenID] = b
		if err := s.store.SaveBookings(ctx, s.bookings); err != nil {
			delete(s.bookings, b.TokenID)
			return fmt.Errorf("persist booking: %w", err)
		}

		created = b
		log.Info().
			Str("token_id", b.TokenID).
			Str("department", string(b.Department)).
			Str("date", b.BookingDate.String()).
			Int("token_number", b.TokenNumber).
			Msg("booking created")
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := *created
	return &out, nil
}

// nextTokenNumberLocked returns 1 + the highest token number already
// assigned in the partition. Numbers start at 1 and stay dense because
// bookings are never physically deleted. Caller holds s.mu.
func (s *Service) nextTokenNumberLocked(dept Department, date Date) int {
	max := 0
	for _, b := range s.bookings {
		if b.Department == dept && b.BookingDate.Equal(date) && b.TokenNumber > max {
			max = b.TokenNumber
		}
	}
	return max + 1
}

func (s *Service) GetBooking(tokenID string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, tokenID)
	}
	out := *b
	return &out, nil
}

// UpdateBooking sets the status and optionally replaces the notes. The
// record stays in the ledger whatever the status; cancellation is a
// transition, not a removal.
func (s *Service) UpdateBooking(ctx context.Context, tokenID string, status Status, notes string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, tokenID)
	}

	prevStatus, prevNotes, prevUpdated := b.Status, b.Notes, b.UpdatedAt

	b.Status = status
	b.UpdatedAt = s.now()
	if notes != "" {
		b.Notes = notes
	}

	if err := s.store.SaveBookings(ctx, s.bookings); err != nil {
		b.Status, b.Notes, b.UpdatedAt = prevStatus, prevNotes, prevUpdated
		return nil, fmt.Errorf("persist booking update: %w", err)
	}

	log.Info().Str("token_id", tokenID).Str("status", string(status)).Msg("booking updated")
	out := *b
	return &out, nil
}

// CancelBooking is a status transition to cancelled. Cancelling an already
// cancelled booking succeeds and leaves the status unchanged.
func (s *Service) CancelBooking(ctx context.Context, tokenID string) (*Booking, error) {
	return s.UpdateBooking(ctx, tokenID, StatusCancelled, "")
}

// SearchFilter fields are optional and conjunctive. Zero values mean
// "no constraint"; Date uses a pointer because the zero date is ambiguous.
type SearchFilter struct {
	PatientName  string
	PatientPhone string
	Department   Department
	Date         *Date
	Status       Status
	TokenNumber  int
}

// SearchBookings returns matches sorted by (date, time).
func (s *Service) SearchBookings(f SearchFilter) []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Booking
	for _, b := range s.bookings {
		if f.PatientName != "" && !strings.Contains(strings.ToLower(b.PatientName), strings.ToLower(f.PatientName)) {
			continue
		}
		if f.PatientPhone != "" && !strings.Contains(b.PatientPhone, f.PatientPhone) {
			continue
		}
		if f.Department != "" && b.Department != f.Department {
			continue
		}
		if f.Date != nil && !b.BookingDate.Equal(*f.Date) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.TokenNumber != 0 && b.TokenNumber != f.TokenNumber {
			continue
		}
		results = append(results, *b)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].BookingDate.Equal(results[j].BookingDate) {
			return results[i].BookingDate.Before(results[j].BookingDate)
		}
		return results[i].BookingTime.Before(results[j].BookingTime)
	})
	return results
}

// GetDailyBookings lists a day's bookings, optionally for one department,
// sorted by (time, token number).
func (s *Service) GetDailyBookings(date Date, dept Department) []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Booking
	for _, b := range s.bookings {
		if !b.BookingDate.Equal(date) {
			continue
		}
		if dept != "" && b.Department != dept {
			continue
		}
		results = append(results, *b)
	}

	sort.Slice(results, func(i, j int) bool {
		if !results[i].BookingTime.Equal(results[j].BookingTime) {
			return results[i].BookingTime.Before(results[j].BookingTime)
		}
		return results[i].TokenNumber < results[j].TokenNumber
	})
	return results
}

// Stats are simple aggregate tallies over the full ledger.
type Stats struct {
	TotalBookings       int                `json:"total_bookings"`
	StatusBreakdown     map[Status]int     `json:"status_breakdown"`
	DepartmentBreakdown map[Department]int `json:"department_breakdown"`
}

func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalBookings:       len(s.bookings),
		StatusBreakdown:     make(map[Status]int),
		DepartmentBreakdown: make(map[Department]int),
	}
	for _, b := range s.bookings {
		stats.StatusBreakdown[b.Status]++
		stats.DepartmentBreakdown[b.Department]++
	}
	return stats
}
