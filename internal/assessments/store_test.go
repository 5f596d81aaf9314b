package assessments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i, category := range []string{"Low Risk", "Moderate Risk", "High Risk"} {
		require.NoError(t, store.Record(ctx, &Assessment{
			ID:          category,
			OwnerID:     "owner-1",
			Domain:      "stroke",
			Category:    category,
			Probability: float64(i) * 0.2,
			RiskFactors: []string{"Hypertension"},
			ModelStatus: "fallback",
			CreatedAt:   time.Now().UTC(),
		}))
	}
	require.NoError(t, store.Record(ctx, &Assessment{ID: "other", OwnerID: "owner-2"}))

	list, err := store.ListByOwner(ctx, "owner-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Newest first.
	assert.Equal(t, "High Risk", list[0].Category)
	assert.Equal(t, "Low Risk", list[2].Category)
}

func TestMemoryStore_ListHonorsLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, &Assessment{OwnerID: "owner-1"}))
	}

	list, err := store.ListByOwner(ctx, "owner-1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryStore_UnknownOwnerEmpty(t *testing.T) {
	store := NewMemoryStore()
	list, err := store.ListByOwner(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
