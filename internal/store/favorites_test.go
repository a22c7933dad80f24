package store

import (
	"context"
	"testing"

	"sublet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ToggleFavorite(t *testing.T) {
	s := newTestStore(t)
	se := sessionAs(t, s, 3)
	ctx := context.Background()

	assert.False(t, se.IsFavorite(1))

	on, err := se.ToggleFavorite(ctx, 1)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, se.IsFavorite(1))
	assert.True(t, s.IsFavorite(3, 1))

	var ids []uint
	for _, l := range s.FavoriteListingsOf(3) {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []uint{1, 5}, ids)

	off, err := se.ToggleFavorite(ctx, 1)
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, se.IsFavorite(1))
	assert.Len(t, s.FavoriteListingsOf(3), 1)
}

func TestSession_ToggleFavorite_TwiceRestores(t *testing.T) {
	for _, listingID := range []uint{1, 2, 5} {
		s := newTestStore(t)
		se := sessionAs(t, s, 3)
		before := s.Favorites()

		_, err := se.ToggleFavorite(context.Background(), listingID)
		require.NoError(t, err)
		_, err = se.ToggleFavorite(context.Background(), listingID)
		require.NoError(t, err)

		assert.ElementsMatch(t, before, s.Favorites(), "listing %d", listingID)
	}
}

func TestSession_ToggleFavorite_UnknownListing(t *testing.T) {
	s := newTestStore(t)
	_, err := sessionAs(t, s, 3).ToggleFavorite(context.Background(), 404)
	requireCode(t, err, models.CodeNotFound)
	assert.Len(t, s.Favorites(), 1)
}
