package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sublet/internal/database"
	"sublet/internal/models"
	"sublet/internal/seed"
	"sublet/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestSnapshotRepository_LoadEmpty(t *testing.T) {
	repo := NewSnapshotRepository(setupSQLite(t))

	got, ok, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got.Users)
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	repo := NewSnapshotRepository(setupSQLite(t))
	ctx := context.Background()

	demo, err := seed.LoadDemo()
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, demo))

	got, ok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, demo.Counts(), got.Counts())

	t.Run("listings keep list fields", func(t *testing.T) {
		want := demo.Listings[0]
		have := got.Listings[0]
		assert.Equal(t, want.ID, have.ID)
		assert.Equal(t, want.Title, have.Title)
		assert.Equal(t, []string(want.Amenities), []string(have.Amenities))
		assert.Equal(t, want.Status, have.Status)
		assert.True(t, want.AvailableFrom.Equal(have.AvailableFrom))
	})

	t.Run("messages keep read flags and optional listing", func(t *testing.T) {
		for i, m := range demo.Messages {
			assert.Equal(t, m.Read, got.Messages[i].Read)
			assert.Equal(t, m.ListingID, got.Messages[i].ListingID)
			assert.Equal(t, m.Content, got.Messages[i].Content)
		}
	})

	t.Run("loaded snapshot builds a store", func(t *testing.T) {
		s, err := store.New(got)
		require.NoError(t, err)
		assert.Equal(t, demo.Counts(), s.Snapshot().Counts())
	})
}

func TestSnapshotRepository_SaveReplaces(t *testing.T) {
	repo := NewSnapshotRepository(setupSQLite(t))
	ctx := context.Background()

	demo, err := seed.LoadDemo()
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, demo))

	s, err := store.New(demo)
	require.NoError(t, err)
	se, err := s.SessionFor(ctx, 2)
	require.NoError(t, err)
	_, err = se.SendMessage(ctx, 3, 0, "still available?")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s.Snapshot()))

	got, ok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Messages, len(demo.Messages)+1)
	assert.Len(t, got.Users, len(demo.Users))
	assert.Equal(t, "still available?", got.Messages[len(got.Messages)-1].Content)
}

func TestSnapshotRepository_SaveEmptyCollections(t *testing.T) {
	repo := NewSnapshotRepository(setupSQLite(t))
	ctx := context.Background()

	minimal := store.Seed{Users: []models.User{{ID: 1, FirstName: "Ada", LastName: "L", Email: "ada@example.edu", JoinedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}}
	require.NoError(t, repo.Save(ctx, minimal))

	got, ok, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Users, 1)
	assert.Empty(t, got.Listings)
}

func TestSnapshotRepository_Errors(t *testing.T) {
	t.Run("save rolls back", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewSnapshotRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "users"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.Save(context.Background(), store.Seed{})
		require.Error(t, err)
		assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("load fails", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewSnapshotRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

		_, ok, err := repo.Load(context.Background())
		require.Error(t, err)
		assert.False(t, ok)
		assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
