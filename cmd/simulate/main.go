package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	ConfirmRatio float64
	ReadRatio    float64
	PatientLimit int
}

type slotRef struct {
	DoctorID uuid.UUID
	Date     string
	SlotID   uuid.UUID
	Window   string
}

type DataPool struct {
	Patients     []uuid.UUID
	Slots        []slotRef
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func percentile(sorted []time.Duration, p int) time.Duration {
	i := len(sorted) * p / 100
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func (om *OperationMetrics) Stats() (avg, p50, p95, p99, max time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	return avg, percentile(latencies, 50), percentile(latencies, 95), percentile(latencies, 99), latencies[len(latencies)-1]
}

type Metrics struct {
	BookSlot     OperationMetrics
	Appointment  OperationMetrics
	Confirm      OperationMetrics
	ReadByID     OperationMetrics
	Availability OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	log     *logrus.Logger
	metrics Metrics
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.Info("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.WithFields(logrus.Fields{
		"duration": cfg.Duration,
		"workers":  cfg.Workers,
		"booking":  cfg.BookingRatio,
		"confirm":  cfg.ConfirmRatio,
		"read":     cfg.ReadRatio,
	}).Info("config loaded")

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("load data pool")
	}
	sim.pool = pool
	log.WithField("patients", len(pool.Patients)).WithField("slots", len(pool.Slots)).Info("data pool loaded")

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		ConfirmRatio: getFloat("SIM_CONFIRM_RATIO", 0.2),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 4000),
	}

	total := cfg.BookingRatio + cfg.ConfirmRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ConfirmRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// loadDataPool reads patients and every open slot through the API.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	pool := &DataPool{}

	var patients []struct {
		ID     uuid.UUID `json:"id"`
		Active bool      `json:"is_active"`
	}
	if err := s.getJSON(ctx, "/patients", &patients); err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	for _, p := range patients {
		if p.Active && len(pool.Patients) < s.config.PatientLimit {
			pool.Patients = append(pool.Patients, p.ID)
		}
	}

	var doctors []struct {
		ID     uuid.UUID `json:"id"`
		Active bool      `json:"is_active"`
		Dates  []string  `json:"schedule_dates"`
	}
	if err := s.getJSON(ctx, "/doctors", &doctors); err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	for _, d := range doctors {
		if !d.Active {
			continue
		}
		for _, date := range d.Dates {
			var avail []struct {
				SlotID uuid.UUID `json:"slot_id"`
				Window struct {
					Start string `json:"start"`
					End   string `json:"end"`
				} `json:"window"`
			}
			path := fmt.Sprintf("/doctors/%s/slots/available?date=%s", d.ID, date)
			if err := s.getJSON(ctx, path, &avail); err != nil {
				return nil, fmt.Errorf("load slots: %w", err)
			}
			for _, a := range avail {
				pool.Slots = append(pool.Slots, slotRef{
					DoctorID: d.ID,
					Date:     date,
					SlotID:   a.SlotID,
					Window:   a.Window.Start + "-" + a.Window.End,
				})
			}
		}
	}

	if len(pool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(pool.Slots) == 0 {
		return nil, fmt.Errorf("no open slots loaded")
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.WithField("duration", s.config.Duration).WithField("workers", s.config.Workers).Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.ConfirmRatio:
			s.doConfirm(ctx, rng)
		case rng.Intn(2) == 0:
			s.doReadByID(ctx, rng)
		default:
			s.doAvailability(ctx, rng)
		}
	}
}

// send performs one request and returns the status and body, or status 0
// when the request never completed.
func (s *Simulator) send(ctx context.Context, method, path string, body any) (int, []byte, time.Duration) {
	var rd io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, rd)
	if err != nil {
		return 0, nil, 0
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, nil, latency
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data, latency
}

// doBooking takes a unit of a random slot and, when that succeeds, records
// the appointment for the same window.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	slot := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	path := fmt.Sprintf("/doctors/%s/slots/%s/%s/book", slot.DoctorID, slot.Date, slot.SlotID)
	status, _, latency := s.send(ctx, http.MethodPost, path, map[string]string{"patient_id": patientID.String()})
	if ctx.Err() != nil {
		return
	}
	s.metrics.BookSlot.Record(latency, status)
	if status != http.StatusNoContent {
		return
	}

	status, data, latency := s.send(ctx, http.MethodPost, "/appointments", map[string]string{
		"patient_id": patientID.String(),
		"doctor_id":  slot.DoctorID.String(),
		"date":       slot.Date,
		"time_slot":  slot.Window,
	})
	if ctx.Err() != nil {
		return
	}
	s.metrics.Appointment.Record(latency, status)
	if status == http.StatusCreated {
		var appt struct {
			ID uuid.UUID `json:"id"`
		}
		if json.Unmarshal(data, &appt) == nil && appt.ID != uuid.Nil {
			s.pool.AddAppointment(appt.ID)
		}
	}
}

func (s *Simulator) doConfirm(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	status, _, latency := s.send(ctx, http.MethodPost, "/appointments/"+apptID.String()+"/confirm", nil)
	if ctx.Err() == nil {
		s.metrics.Confirm.Record(latency, status)
	}
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	status, _, latency := s.send(ctx, http.MethodGet, "/appointments/"+apptID.String(), nil)
	if ctx.Err() == nil {
		s.metrics.ReadByID.Record(latency, status)
	}
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	slot := s.pool.Slots[rng.Intn(len(s.pool.Slots))]
	path := fmt.Sprintf("/doctors/%s/slots/available?date=%s", slot.DoctorID, slot.Date)
	status, _, latency := s.send(ctx, http.MethodGet, path, nil)
	if ctx.Err() == nil {
		s.metrics.Availability.Record(latency, status)
	}
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Book slot", &s.metrics.BookSlot)
	printOperationReport("Create appointment", &s.metrics.Appointment)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Availability", &s.metrics.Availability)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)
	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	avg, p50, p95, p99, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s p99=%s max=%s\n",
		avg.Round(time.Microsecond), p50.Round(time.Microsecond), p95.Round(time.Microsecond),
		p99.Round(time.Microsecond), max.Round(time.Microsecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
