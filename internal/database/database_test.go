package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAuditInsertAndRecent(t *testing.T) {
	repo := NewAuditRepository(testDB(t))
	ctx := context.Background()

	for _, level := range []string{"Low", "High", "High"} {
		err := repo.Insert(ctx, &Audit{
			RequestID:   "req-" + level,
			Prediction:  1,
			Probability: 0.8,
			RiskLevel:   level,
			Language:    "en",
			ClientType:  "doctor",
		})
		require.NoError(t, err)
	}

	audits, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, audits, 3)
	for _, a := range audits {
		assert.NotEmpty(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	}

	counts, err := repo.RiskCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["High"])
	assert.Equal(t, 1, counts["Low"])
}

func TestRecentHonorsLimit(t *testing.T) {
	repo := NewAuditRepository(testDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &Audit{RiskLevel: "Low", Probability: 0.2}))
	}

	audits, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, audits, 2)
}
