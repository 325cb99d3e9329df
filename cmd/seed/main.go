package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/identity"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	"github.com/hackgods/clinic-scheduling/internal/metrics"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

type seedOptions struct {
	practitioners int
	patients      int
	staffEmail    string
	staffPassword string
}

func main() {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Fill the database with fake practitioners, patients and a staff login",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config load error: %w", err)
			}
			log := logging.New(cfg.Env, cfg.LogLevel, "seed")
			return run(cmd.Context(), cfg, opts, log)
		},
	}
	cmd.Flags().IntVar(&opts.practitioners, "practitioners", 25, "number of practitioners to create")
	cmd.Flags().IntVar(&opts.patients, "patients", 500, "number of clinical records to create")
	cmd.Flags().StringVar(&opts.staffEmail, "staff-email", "admin@clinic.local", "email of the bootstrap staff login")
	cmd.Flags().StringVar(&opts.staffPassword, "staff-password", "Admin1234", "password of the bootstrap staff login")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, opts seedOptions, log zerolog.Logger) error {
	log.Info().Msg("seed starting")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.ConnectPostgres(connectCtx, cfg.Postgres())
	cancel()
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return err
	}
	defer rdb.Close()

	directoryRepo := directory.NewPgRepository(pool)
	cache := directory.NewCache(directory.NewRedisKV(rdb), directoryRepo, cfg.DirectoryCacheTTL, metrics.New(), log)
	directorySvc := directory.NewService(directoryRepo, cache)
	identitySvc := identity.NewService(identity.NewPgRepository(pool), identity.NewBcryptHasher(bcrypt.DefaultCost), log)

	if err := seedStaff(ctx, identitySvc, opts, log); err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}
	if err := seedPractitioners(ctx, directorySvc, opts.practitioners, log); err != nil {
		return fmt.Errorf("seed practitioners: %w", err)
	}
	if err := seedPatients(ctx, identitySvc, opts.patients, log); err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}

	log.Info().Msg("seed complete")
	return nil
}

func seedStaff(ctx context.Context, svc *identity.Service, opts seedOptions, log zerolog.Logger) error {
	bootstrap := &identity.Caller{Role: identity.RoleStaff, Name: "seed"}
	_, err := svc.Register(ctx, bootstrap, identity.RegisterInput{
		Name:       "Clinic Admin",
		Email:      opts.staffEmail,
		Identifier: "00000000000",
		Password:   opts.staffPassword,
		Role:       string(identity.RoleStaff),
	})
	if errors.Is(err, identity.ErrEmailTaken) || errors.Is(err, identity.ErrIdentifierTaken) {
		log.Info().Str("email", opts.staffEmail).Msg("staff login already present")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", opts.staffEmail).Msg("staff login created")
	return nil
}

func seedPractitioners(ctx context.Context, svc *directory.Service, count int, log zerolog.Logger) error {
	log.Info().Int("count", count).Msg("seeding practitioners")

	created := 0
	for created < count {
		_, err := svc.Create(ctx, directory.Input{
			Name:      "Dr. " + gofakeit.Name(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
			License:   gofakeit.Numerify("######") + "-" + gofakeit.StateAbr(),
		})
		if errors.Is(err, directory.ErrLicenseTaken) {
			continue
		}
		if err != nil {
			return err
		}
		created++
	}

	log.Info().Int("count", created).Msg("practitioners seeded")
	return nil
}

func seedPatients(ctx context.Context, svc *identity.Service, count int, log zerolog.Logger) error {
	log.Info().Int("count", count).Msg("seeding patients")

	const progressEvery = 100

	created := 0
	for created < count {
		_, err := svc.CreateRecord(ctx, identity.RecordInput{
			Name:       gofakeit.Name(),
			Identifier: gofakeit.Numerify("###########"),
			Phone:      gofakeit.Phone(),
			Address:    gofakeit.Street() + ", " + gofakeit.City(),
		})
		if errors.Is(err, identity.ErrIdentifierTaken) {
			continue
		}
		if err != nil {
			return err
		}
		created++
		if created%progressEvery == 0 {
			log.Info().Int("done", created).Int("total", count).Msg("patients seeded")
		}
	}

	log.Info().Int("count", created).Msg("patients seeded")
	return nil
}
