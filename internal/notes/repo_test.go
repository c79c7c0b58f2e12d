package notes

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"autonotes/internal/health"
)

func TestRepo_MalformedIDNeverConnects(t *testing.T) {
	// No URI: any backend access would fail with errUnconfigured instead.
	repo := NewRepo("", "", "")

	_, err := repo.GetByID(context.Background(), "xyz")
	assert.ErrorIs(t, err, errInvalidID)
	assert.NotErrorIs(t, err, errUnconfigured)

	_, err = repo.Delete(context.Background(), "1234")
	assert.ErrorIs(t, err, errInvalidID)
}

func TestRepo_UnconfiguredSurfacesAtFirstUse(t *testing.T) {
	repo := NewRepo("", "", "")

	_, err := repo.Insert(context.Background(), &Note{Summary: "s"})
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "MONGO_URI not configured")

	assert.Equal(t, health.StateUnconfigured, repo.Ping(context.Background()).State)
	assert.NoError(t, repo.Close(context.Background()))
}

// Runs against a live server when MONGODB_TEST_URI is set.
func TestRepo_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := "notes_test_" + primitive.NewObjectID().Hex()
	repo := NewRepo(uri, "autonotes_test", coll)
	require.NoError(t, repo.Open(ctx))
	t.Cleanup(func() {
		c, _ := repo.connect(context.Background())
		if c != nil {
			c.Drop(context.Background())
		}
		repo.Close(context.Background())
	})
	require.NoError(t, repo.EnsureIndexes(ctx))
	assert.True(t, repo.Ping(ctx).Healthy())

	t.Run("round trip", func(t *testing.T) {
		in := &Note{
			Summary:     "Team agreed to ship v2 by Friday.",
			ActionItems: []ActionItem{{Text: "Write changelog", Owner: strPtr("Alice")}},
			Decisions:   []string{"Ship v2 by Friday"},
			Keywords:    []string{"v2"},
		}
		id, err := repo.Insert(ctx, in)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, in.Summary, got.Summary)
		assert.Equal(t, in.ActionItems, got.ActionItems)
		assert.Equal(t, in.Decisions, got.Decisions)
		assert.Equal(t, in.Keywords, got.Keywords)
		// Mongo stores milliseconds.
		assert.WithinDuration(t, in.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNoteNotFound)

		deleted, err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("pagination", func(t *testing.T) {
		c, err := repo.connect(ctx)
		require.NoError(t, err)
		_, err = c.DeleteMany(ctx, primitive.M{})
		require.NoError(t, err)

		base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		for i := 0; i < 4; i++ {
			_, err := repo.Insert(ctx, &Note{
				Summary:   "note " + string(rune('0'+i)),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}

		first, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		second, err := repo.List(ctx, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"note 3", "note 2"}, summaries(first))
		assert.Equal(t, []string{"note 1", "note 0"}, summaries(second))
	})
}
