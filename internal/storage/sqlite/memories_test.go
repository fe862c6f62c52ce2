package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/sandevgo/recallbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDim = 1024

// unitVector returns a 1024-dim unit vector leaning towards axis i.
func unitVector(i int) []float32 {
	v := make([]float32, testDim)
	v[i%testDim] = 1
	return v
}

// blendedVector mixes two axes so cosine similarity lands between 0 and 1.
func blendedVector(i, j int) []float32 {
	v := make([]float32, testDim)
	norm := float32(1 / math.Sqrt2)
	v[i%testDim] = norm
	v[j%testDim] = norm
	return v
}

func newTestRepo(t *testing.T) *MemoriesRepo {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewMemoriesRepo(db, testDim)
}

func TestMemoriesRepo_InsertAndQuery(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, core.MemoryRecord{
		UserID:    1,
		Fact:      "The user's name is Alice",
		Embedding: unitVector(0),
	}))
	require.NoError(t, repo.Insert(ctx, core.MemoryRecord{
		UserID:    1,
		Fact:      "The user lives in Berlin",
		Embedding: blendedVector(0, 1),
	}))

	results, err := repo.Query(ctx, 1, unitVector(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Most similar first, similarity in [0, 1] for these vectors.
	assert.Equal(t, "The user's name is Alice", results[0].Record.Fact)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.NotEmpty(t, results[0].Record.ID)
	assert.False(t, results[0].Record.CreatedAt.IsZero())
}

func TestMemoriesRepo_QueryIsUserScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, core.MemoryRecord{
		UserID:    1,
		Fact:      "The user's name is Alice",
		Embedding: unitVector(0),
	}))
	require.NoError(t, repo.Insert(ctx, core.MemoryRecord{
		UserID:    2,
		Fact:      "The user's name is Bob",
		Embedding: unitVector(0),
	}))

	results, err := repo.Query(ctx, 2, unitVector(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The user's name is Bob", results[0].Record.Fact)
	assert.Equal(t, int64(2), results[0].Record.UserID)
}

func TestMemoriesRepo_QueryRespectsK(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, repo.Insert(ctx, core.MemoryRecord{
			UserID:    1,
			Fact:      "fact number " + string(rune('a'+i)),
			Embedding: blendedVector(0, i+1),
		}))
	}

	results, err := repo.Query(ctx, 1, unitVector(0), 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMemoriesRepo_InsertRejectsBadRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.Insert(ctx, core.MemoryRecord{UserID: 1, Fact: "", Embedding: unitVector(0)})
	require.Error(t, err, "empty fact must be rejected")

	err = repo.Insert(ctx, core.MemoryRecord{UserID: 1, Fact: "ok", Embedding: make([]float32, 7)})
	require.Error(t, err, "wrong dimension must be rejected")
}
