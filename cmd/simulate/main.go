package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/logging"
)

type simConfig struct {
	APIBaseURL    string
	StaffEmail    string
	StaffPassword string
	Duration      time.Duration
	Workers       int
	BookingRatio  float64
	StatusRatio   float64
	ReadRatio     float64
}

// normalize scales the ratios so they sum to one.
func (c *simConfig) normalize() error {
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.Duration <= 0 {
		return errors.New("duration must be > 0")
	}
	total := c.BookingRatio + c.StatusRatio + c.ReadRatio
	if total <= 0 {
		return errors.New("at least one ratio must be positive")
	}
	c.BookingRatio /= total
	c.StatusRatio /= total
	c.ReadRatio /= total
	return nil
}

type dataPool struct {
	doctors  []uuid.UUID
	patients []uuid.UUID

	mu       sync.RWMutex
	bookings []uuid.UUID
}

func (p *dataPool) addBooking(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings = append(p.bookings, id)
}

func (p *dataPool) randomBooking(rng *rand.Rand) (uuid.UUID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.bookings) == 0 {
		return uuid.Nil, false
	}
	return p.bookings[rng.Intn(len(p.bookings))], true
}

type simulator struct {
	cfg    simConfig
	pool   *dataPool
	client *apiClient
	log    zerolog.Logger

	booking   operationStats
	status    operationStats
	directory operationStats
	listing   operationStats
}

func main() {
	cfg := simConfig{}

	cmd := &cobra.Command{
		Use:           "simulate",
		Short:         "Drive a running api-server with concurrent booking traffic",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.normalize(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			log := logging.New("dev", "info", "simulate")
			return run(cmd.Context(), cfg, log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.APIBaseURL, "api", "http://localhost:8080", "api-server base URL")
	f.StringVar(&cfg.StaffEmail, "staff-email", "admin@clinic.local", "staff login used for every request")
	f.StringVar(&cfg.StaffPassword, "staff-password", "Admin1234", "password of the staff login")
	f.DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to generate load")
	f.IntVar(&cfg.Workers, "workers", 10, "concurrent workers")
	f.Float64Var(&cfg.BookingRatio, "booking-ratio", 0.4, "share of bookings")
	f.Float64Var(&cfg.StatusRatio, "status-ratio", 0.2, "share of status updates")
	f.Float64Var(&cfg.ReadRatio, "read-ratio", 0.4, "share of reads")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg simConfig, log zerolog.Logger) error {
	client := &apiClient{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	if err := client.login(ctx, cfg.StaffEmail, cfg.StaffPassword); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	doctors, err := client.listIDs(ctx, "/doctors")
	if err != nil {
		return fmt.Errorf("load doctors: %w", err)
	}
	patients, err := client.listIDs(ctx, "/patients")
	if err != nil {
		return fmt.Errorf("load patients: %w", err)
	}
	if len(doctors) == 0 || len(patients) == 0 {
		return errors.New("no doctors or patients to book with, run seed first")
	}

	log.Info().
		Int("doctors", len(doctors)).
		Int("patients", len(patients)).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Msg("starting simulation")

	sim := &simulator{
		cfg:    cfg,
		pool:   &dataPool{doctors: doctors, patients: patients},
		client: client,
		log:    log,
	}
	sim.run(ctx)
	sim.printReport()
	return nil
}

func (s *simulator) run(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()
	s.log.Info().Msg("simulation complete")
}

func (s *simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.cfg.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.cfg.BookingRatio+s.cfg.StatusRatio:
			s.doStatus(ctx, rng)
		default:
			s.doRead(ctx, rng)
		}
	}
}

func (s *simulator) timed(stats *operationStats, ok func(status int) outcome, fn func() (int, error)) {
	start := time.Now()
	status, err := fn()
	latency := time.Since(start)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			stats.record(latency, outcomeError)
		}
		return
	}
	stats.record(latency, ok(status))
}

func expect(code int) func(int) outcome {
	return func(status int) outcome {
		switch {
		case status == code:
			return outcomeSuccess
		case status >= 400 && status < 500:
			return outcomeRejected
		default:
			return outcomeError
		}
	}
}

func (s *simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	body := map[string]string{
		"doctorId":  s.pool.doctors[rng.Intn(len(s.pool.doctors))].String(),
		"patientId": s.pool.patients[rng.Intn(len(s.pool.patients))].String(),
		"date":      time.Now().Add(time.Duration(rng.Intn(30*24)) * time.Hour).UTC().Format(time.RFC3339),
	}

	s.timed(&s.booking, expect(http.StatusCreated), func() (int, error) {
		var resp struct {
			Appointment idOnly `json:"appointment"`
		}
		status, err := s.client.call(ctx, http.MethodPost, "/appointments", body, &resp)
		if err == nil && status == http.StatusCreated {
			s.pool.addBooking(resp.Appointment.ID)
		}
		return status, err
	})
}

func (s *simulator) doStatus(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.randomBooking(rng)
	if !ok {
		s.doBooking(ctx, rng)
		return
	}
	target := "completed"
	if rng.Intn(2) == 0 {
		target = "canceled"
	}

	// 409 is the expected answer when another worker already closed the booking.
	s.timed(&s.status, expect(http.StatusOK), func() (int, error) {
		return s.client.call(ctx, http.MethodPut, "/appointments/"+id.String()+"/status", map[string]string{"status": target}, nil)
	})
}

func (s *simulator) doRead(ctx context.Context, rng *rand.Rand) {
	if rng.Intn(2) == 0 {
		s.timed(&s.directory, expect(http.StatusOK), func() (int, error) {
			return s.client.call(ctx, http.MethodGet, "/doctors", nil, nil)
		})
		return
	}
	s.timed(&s.listing, expect(http.StatusOK), func() (int, error) {
		return s.client.call(ctx, http.MethodGet, "/appointments", nil, nil)
	})
}

func (s *simulator) printReport() {
	w := os.Stdout
	line := strings.Repeat("=", 80)
	fmt.Fprintln(w, "\n"+line)
	fmt.Fprintln(w, "SIMULATION REPORT")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Duration: %s\nWorkers: %d\n\n", s.cfg.Duration, s.cfg.Workers)

	s.booking.report(w, "Book appointment")
	s.status.report(w, "Update status")
	s.directory.report(w, "List doctors")
	s.listing.report(w, "List appointments")
}
