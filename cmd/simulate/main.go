package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/careline/token-booking/internal/booking"
)

// Fires concurrent booking requests at a running api-server, all aimed at a
// small set of (department, date) partitions, then verifies the token
// numbers handed out are dense: 1..n per partition, no duplicates, no gaps.

type SimConfig struct {
	APIBaseURL  string
	Workers     int
	PerWorker   int
	Departments int
	Date        booking.Date
}

type createRequest struct {
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	PatientAge   int    `json:"patient_age"`
	Department   string `json:"department"`
	BookingDate  string `json:"booking_date"`
	BookingTime  string `json:"booking_time"`
}

type createResponse struct {
	Success     bool   `json:"success"`
	TokenID     string `json:"token_id"`
	TokenNumber int    `json:"token_number"`
}

type Metrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	Latencies []time.Duration
}

func (m *Metrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&m.Total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.Conflict, 1)
	default:
		atomic.AddInt64(&m.Error, 1)
	}

	m.mu.Lock()
	m.Latencies = append(m.Latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Stats() (avg, p50, p95 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(m.Latencies))
	copy(latencies, m.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	return avg, latencies[p50Idx], latencies[p95Idx]
}

type partitionNumbers struct {
	mu      sync.Mutex
	numbers map[string][]int
}

func (p *partitionNumbers) Add(key string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.numbers[key] = append(p.numbers[key], n)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadSimConfig()
	log.Printf("config: base_url=%s workers=%d per_worker=%d departments=%d date=%s",
		cfg.APIBaseURL, cfg.Workers, cfg.PerWorker, cfg.Departments, cfg.Date)

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}
	metrics := &Metrics{}
	collected := &partitionNumbers{numbers: make(map[string][]int)}

	var phoneSeq int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < cfg.PerWorker; i++ {
				dept := booking.Departments[int(atomic.AddInt64(&phoneSeq, 1))%cfg.Departments]
				phone := fmt.Sprintf("9%09d", atomic.AddInt64(&phoneSeq, 1))

				req := createRequest{
					PatientName:  gofakeit.Name(),
					PatientPhone: phone,
					PatientAge:   gofakeit.Number(1, 95),
					Department:   string(dept),
					BookingDate:  cfg.Date.String(),
					BookingTime:  booking.NewTimeOfDay(gofakeit.Number(9, 17), gofakeit.Number(0, 59), 0).String(),
				}

				tokenNumber, status, latency := postBooking(client, cfg.APIBaseURL, req)
				metrics.Record(latency, status)
				if status == http.StatusCreated {
					collected.Add(booking.PartitionKey(dept, cfg.Date), tokenNumber)
				}
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	avg, p50, p95 := metrics.Stats()

	log.Printf("done in %s: total=%d success=%d conflict=%d error=%d",
		elapsed, metrics.Total, metrics.Success, metrics.Conflict, metrics.Error)
	log.Printf("latency: avg=%s p50=%s p95=%s", avg, p50, p95)

	if verifyDense(collected) {
		log.Println("token numbering verified: dense per partition, no duplicates")
	} else {
		log.Println("TOKEN NUMBERING VIOLATION detected")
		os.Exit(1)
	}
}

func postBooking(client *http.Client, baseURL string, req createRequest) (tokenNumber, status int, latency time.Duration) {
	body, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("marshal request: %v", err)
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/tokens", "application/json", bytes.NewReader(body))
	latency = time.Since(start)
	if err != nil {
		return 0, 0, latency
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var out createResponse
	_ = json.Unmarshal(data, &out)
	return out.TokenNumber, resp.StatusCode, latency
}

func verifyDense(p *partitionNumbers) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ok := true
	for key, nums := range p.numbers {
		sort.Ints(nums)
		for i, n := range nums {
			if n != i+1 {
				log.Printf("partition %s: expected token %d at position %d, got %d", key, i+1, i, n)
				ok = false
				break
			}
		}
	}
	return ok
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Workers:     getInt("SIM_WORKERS", 10),
		PerWorker:   getInt("SIM_PER_WORKER", 20),
		Departments: getInt("SIM_DEPARTMENTS", 3),
		Date:        booking.DateOf(time.Now().AddDate(0, 0, 1)),
	}

	if v := os.Getenv("SIM_DATE"); v != "" {
		date, err := booking.ParseDate(v)
		if err != nil {
			log.Fatalf("invalid SIM_DATE: %v", err)
		}
		cfg.Date = date
	}
	if cfg.Departments < 1 || cfg.Departments > len(booking.Departments) {
		log.Fatalf("SIM_DEPARTMENTS must be between 1 and %d", len(booking.Departments))
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
