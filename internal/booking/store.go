package booking

import "context"

// Store is the durable backing for the ledger and the serving tracker.
// Bookings and serving entries live in two independent collections; each
// save replaces its collection wholesale, last successful write wins.
type Store interface {
	LoadBookings(ctx context.Context) (map[string]*Booking, error)
	SaveBookings(ctx context.Context, bookings map[string]*Booking) error

	LoadServing(ctx context.Context) (map[string]*ServingEntry, error)
	SaveServing(ctx context.Context, entries map[string]*ServingEntry) error
}
