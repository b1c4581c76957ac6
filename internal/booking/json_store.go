package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	bookingsFile = "token_bookings.json"
	servingFile  = "current_tokens.json"
)

// JSONStore persists both collections as flat keyed JSON documents under a
// data directory, one file per collection. Every save rewrites the whole
// file through a temp-file rename. A missing file is an empty collection.
type JSONStore struct {
	dir string

	bookingsMu sync.Mutex
	servingMu  sync.Mutex
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) LoadBookings(ctx context.Context) (map[string]*Booking, error) {
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	bookings := make(map[string]*Booking)
	if err := readJSONFile(filepath.Join(s.dir, bookingsFile), &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *JSONStore) SaveBookings(ctx context.Context, bookings map[string]*Booking) error {
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	return writeJSONFile(filepath.Join(s.dir, bookingsFile), bookings)
}

func (s *JSONStore) LoadServing(ctx context.Context) (map[string]*ServingEntry, error) {
	s.servingMu.Lock()
	defer s.servingMu.Unlock()

	entries := make(map[string]*ServingEntry)
	if err := readJSONFile(filepath.Join(s.dir, servingFile), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *JSONStore) SaveServing(ctx context.Context, entries map[string]*ServingEntry) error {
	s.servingMu.Lock()
	defer s.servingMu.Unlock()

	return writeJSONFile(filepath.Join(s.dir, servingFile), entries)
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("file", path).Msg("no data file found, starting empty")
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSONFile(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
