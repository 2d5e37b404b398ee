package searchquery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fd "fundingdiscovery/internal/domain"
)

func TestDueForDay_FiltersDisabledAndOtherDays(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, fd.SearchQuery{Text: "youth arts grants", DayOfWeek: time.Monday, Enabled: true})
	require.NoError(t, err)
	_, err = store.Create(ctx, fd.SearchQuery{Text: "disabled query", DayOfWeek: time.Monday, Enabled: false})
	require.NoError(t, err)
	_, err = store.Create(ctx, fd.SearchQuery{Text: "tuesday query", DayOfWeek: time.Tuesday, Enabled: true})
	require.NoError(t, err)

	due, err := store.DueForDay(ctx, int(time.Monday))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "youth arts grants", due[0].Text)
}

func TestDelete_RemovesQuery(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	q, err := store.Create(ctx, fd.SearchQuery{Text: "test"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, q.ID))
	_, err = store.Get(ctx, q.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
