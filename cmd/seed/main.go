package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/careline/token-booking/internal/booking"
	"github.com/careline/token-booking/internal/config"
	"github.com/careline/token-booking/internal/db"
)

// Seeds a batch of fake bookings through the ledger itself, so token
// numbering and the one-booking-per-patient-per-day rule hold for the
// generated data just like they do for real traffic.
func main() {
	count := flag.Int("count", 200, "number of bookings to create")
	days := flag.Int("days", 7, "spread bookings over this many days starting today")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	var store booking.Store
	if cfg.PostgresDSN != "" {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		if _, err := pool.Exec(ctx, booking.Schema); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
		store = booking.NewPgStore(pool)
	} else {
		jsonStore, err := booking.NewJSONStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("data dir: %v", err)
		}
		store = jsonStore
	}

	gofakeit.Seed(time.Now().UnixNano())

	ledger := booking.NewService(ctx, store, booking.NewMutexLocker())

	today := time.Now()
	created, conflicts := 0, 0

	for i := 0; i < *count; i++ {
		date := booking.DateOf(today.AddDate(0, 0, gofakeit.Number(0, *days-1)))
		dept := booking.Departments[gofakeit.Number(0, len(booking.Departments)-1)]

		req := booking.CreateRequest{
			PatientName:  gofakeit.Name(),
			PatientPhone: fmt.Sprintf("9%09d", gofakeit.Number(0, 999999999)),
			PatientAge:   gofakeit.Number(1, 95),
			Department:   dept,
			DoctorName:   "Dr. " + gofakeit.LastName(),
			BookingDate:  date,
			BookingTime:  booking.NewTimeOfDay(gofakeit.Number(9, 17), gofakeit.Number(0, 59), 0),
			Symptoms:     gofakeit.Sentence(6),
			Priority:     booking.PriorityNormal,
		}

		if _, err := ledger.CreateBooking(ctx, req); err != nil {
			if errors.Is(err, booking.ErrBookingConflict) {
				conflicts++
				continue
			}
			log.Fatalf("create booking: %v", err)
		}
		created++

		if created%100 == 0 {
			log.Printf("bookings seeded: %d/%d", created, *count)
		}
	}

	log.Printf("seed complete: created=%d conflicts_skipped=%d", created, conflicts)
}
