// Package bootstrap wires the store to its seed data, snapshot database and Redis.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sublet/internal/cache"
	"sublet/internal/config"
	"sublet/internal/database"
	"sublet/internal/observability"
	"sublet/internal/repository"
	"sublet/internal/seed"
	"sublet/internal/store"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// fakeSeedValue keeps generated demo data stable across restarts.
const fakeSeedValue = 42

// Options control runtime initialization behavior.
type Options struct {
	// Now is the store clock. Defaults to time.Now.
	Now func() time.Time
	// SkipRedis leaves the Redis client nil even when REDIS_URL is set.
	SkipRedis bool
}

// Runtime holds the long-lived dependencies of the API.
type Runtime struct {
	Store     *store.Store
	DB        *gorm.DB
	Redis     *redis.Client
	Snapshots repository.SnapshotRepository
}

// LoadSeed reads SEED_FILE (or the demo data) and appends SEED_FAKE_LISTINGS
// generated listings with roughly one new owner per three listings.
func LoadSeed(cfg *config.Config, now time.Time) (store.Seed, error) {
	base, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return store.Seed{}, fmt.Errorf("load seed: %w", err)
	}
	return Extend(base, cfg.SeedFakeListings, now), nil
}

// Extend adds n generated listings to base.
func Extend(base store.Seed, n int, now time.Time) store.Seed {
	if n <= 0 {
		return base
	}
	return seed.NewFactory(fakeSeedValue, now).Extend(base, (n+2)/3, n)
}

// InitRuntime builds the store. With a database configured, a saved snapshot
// wins over seed data and a fresh database receives the seed as its first snapshot.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if observability.ExtractCorrelationID(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())
	}
	rt := &Runtime{}

	db, err := database.Connect(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		slog.Info("snapshot persistence disabled")
	case err != nil:
		return nil, fmt.Errorf("database connection failed: %w", err)
	default:
		rt.DB = db
		rt.Snapshots = repository.NewSnapshotRepository(db)
	}

	data, fromDB, err := rt.initialData(ctx, cfg, opts.Now())
	if err != nil {
		_ = database.Close(rt.DB)
		return nil, err
	}

	rt.Store, err = store.New(data, store.WithClock(opts.Now))
	if err != nil {
		_ = database.Close(rt.DB)
		return nil, fmt.Errorf("build store: %w", err)
	}

	if rt.Snapshots != nil && !fromDB {
		if err := rt.Snapshots.Save(ctx, rt.Store.Snapshot()); err != nil {
			_ = database.Close(rt.DB)
			return nil, fmt.Errorf("write initial snapshot: %w", err)
		}
	}

	if !opts.SkipRedis {
		rt.Redis, err = cache.Connect(ctx, cfg.RedisURL)
		switch {
		case errors.Is(err, cache.ErrDisabled):
			slog.Info("redis disabled: rate limits fail open and ended sessions are not revoked")
		case err != nil:
			slog.Warn("continuing without redis", slog.String("error", err.Error()))
		default:
			slog.Info("redis connected")
		}
	}
	return rt, nil
}

func (rt *Runtime) initialData(ctx context.Context, cfg *config.Config, now time.Time) (store.Seed, bool, error) {
	if rt.Snapshots != nil {
		saved, ok, err := rt.Snapshots.Load(ctx)
		if err != nil {
			return store.Seed{}, false, fmt.Errorf("load snapshot: %w", err)
		}
		if ok {
			slog.Info("store restored from snapshot", slog.Int("users", len(saved.Users)), slog.Int("listings", len(saved.Listings)))
			return saved, true, nil
		}
	}
	data, err := LoadSeed(cfg, now)
	return data, false, err
}

// Shutdown saves the final snapshot and releases connections.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	if observability.ExtractCorrelationID(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())
	}
	var errs []error
	if rt.Snapshots != nil && rt.Store != nil {
		if err := rt.Snapshots.Save(ctx, rt.Store.Snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("write final snapshot: %w", err))
		}
	}
	if err := database.Close(rt.DB); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
