// Package repository persists store snapshots through GORM.
package repository

import (
	"context"
	"fmt"

	"sublet/internal/models"
	"sublet/internal/observability"
	"sublet/internal/store"

	"gorm.io/gorm"
)

const batchSize = 100

// SnapshotRepository saves and restores the complete store content.
type SnapshotRepository interface {
	// Save replaces the persisted snapshot with seed in one transaction.
	Save(ctx context.Context, seed store.Seed) error
	// Load returns the persisted snapshot. ok is false when nothing was saved yet.
	Load(ctx context.Context) (seed store.Seed, ok bool, err error)
}

type snapshotRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.PersistLogger
	spans   *observability.Spans
}

// NewSnapshotRepository returns a SnapshotRepository backed by db.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(),
		log:     observability.NewPersistLogger(db.Dialector.Name()),
		spans:   observability.DefaultSpans(),
	}
}

func (r *snapshotRepository) Save(ctx context.Context, seed store.Seed) (err error) {
	ctx, span := r.spans.Snapshot(ctx, "save", r.db.Dialector.Name())
	defer func() { observability.Finish(span, err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replace(tx, r.metrics, "users", seed.Users); err != nil {
			return err
		}
		if err := replace(tx, r.metrics, "listings", seed.Listings); err != nil {
			return err
		}
		if err := replace(tx, r.metrics, "applications", seed.Applications); err != nil {
			return err
		}
		if err := replace(tx, r.metrics, "favorites", seed.Favorites); err != nil {
			return err
		}
		if err := replace(tx, r.metrics, "messages", seed.Messages); err != nil {
			return err
		}
		if err := replace(tx, r.metrics, "reviews", seed.Reviews); err != nil {
			return err
		}
		return replace(tx, r.metrics, "reports", seed.Reports)
	})
	if err != nil {
		r.log.LogError(ctx, err, "save")
		return models.NewInternalError(fmt.Errorf("save snapshot: %w", err))
	}
	r.log.LogSnapshot(ctx, "save", seed.Counts())
	return nil
}

// replace clears table and inserts rows.
func replace[T any](tx *gorm.DB, metrics *observability.DatabaseMetrics, table string, rows []T) error {
	var zero T
	done := metrics.TrackQuery("delete", table)
	err := tx.Where("1 = 1").Delete(&zero).Error
	done()
	if err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}
	done = metrics.TrackQuery("insert", table)
	err = tx.CreateInBatches(rows, batchSize).Error
	done()
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *snapshotRepository) Load(ctx context.Context) (seed store.Seed, ok bool, err error) {
	ctx, span := r.spans.Snapshot(ctx, "load", r.db.Dialector.Name())
	defer func() { observability.Finish(span, err) }()

	db := r.db.WithContext(ctx)
	steps := []struct {
		table string
		dest  any
	}{
		{"users", &seed.Users},
		{"listings", &seed.Listings},
		{"applications", &seed.Applications},
		{"favorites", &seed.Favorites},
		{"messages", &seed.Messages},
		{"reviews", &seed.Reviews},
		{"reports", &seed.Reports},
	}
	for _, step := range steps {
		done := r.metrics.TrackQuery("select", step.table)
		err = db.Table(step.table).Order(orderFor(step.table)).Find(step.dest).Error
		done()
		if err != nil {
			r.log.LogError(ctx, err, "load")
			return store.Seed{}, false, models.NewInternalError(fmt.Errorf("load %s: %w", step.table, err))
		}
	}

	if len(seed.Users) == 0 {
		return store.Seed{}, false, nil
	}
	r.log.LogSnapshot(ctx, "load", seed.Counts())
	return seed, true, nil
}

// orderFor keeps the original insertion order, which the store relies on for
// stable views.
func orderFor(table string) string {
	if table == "favorites" {
		return "user_id, listing_id"
	}
	return "id"
}
