package stats

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	dbPath := "./test_stats_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, cleanup
}

func backdate(t *testing.T, db *gorm.DB, userID uint, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&entities.ReadingStats{}).
		Where("user_id = ?", userID).
		Update("last_updated", time.Now().Add(-age)).Error)
}

func TestRepository_CreateForUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	row, err := repo.CreateForUser(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), row.UserID)
	assert.Equal(t, 0, row.BooksRead)
	assert.Equal(t, 0, row.TotalReadingTime)
	assert.Equal(t, 0, row.CurrentStreak)

	// Second call returns the existing row
	again, err := repo.CreateForUser(1)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&entities.ReadingStats{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GetForUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	_, err := repo.GetForUser(1)
	assert.ErrorIs(t, err, ErrStatsNotFound)

	_, err = repo.CreateForUser(1)
	require.NoError(t, err)

	row, err := repo.GetForUser(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), row.UserID)
}

func TestRepository_ApplyProgressWrite(t *testing.T) {
	t.Run("increments books read on first completion only", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		_, err := repo.CreateForUser(1)
		require.NoError(t, err)

		// In-progress write does not touch the counter
		require.NoError(t, repo.ApplyProgressWrite(1, false))
		row, err := repo.GetForUser(1)
		require.NoError(t, err)
		assert.Equal(t, 0, row.BooksRead)

		// First completion increments
		require.NoError(t, repo.ApplyProgressWrite(1, true))
		row, err = repo.GetForUser(1)
		require.NoError(t, err)
		assert.Equal(t, 1, row.BooksRead)

		// Later writes for the already-finished book do not
		require.NoError(t, repo.ApplyProgressWrite(1, false))
		row, err = repo.GetForUser(1)
		require.NoError(t, err)
		assert.Equal(t, 1, row.BooksRead)
	})

	t.Run("extends streak within the window", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		_, err := repo.CreateForUser(1)
		require.NoError(t, err)

		require.NoError(t, repo.ApplyProgressWrite(1, false))
		backdate(t, db, 1, 20*time.Hour)
		require.NoError(t, repo.ApplyProgressWrite(1, false))

		row, err := repo.GetForUser(1)
		require.NoError(t, err)
		assert.Equal(t, 2, row.CurrentStreak)
	})

	t.Run("resets streak after the window lapses", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		_, err := repo.CreateForUser(1)
		require.NoError(t, err)

		require.NoError(t, repo.ApplyProgressWrite(1, false))
		require.NoError(t, repo.ApplyProgressWrite(1, false))
		backdate(t, db, 1, 48*time.Hour)
		require.NoError(t, repo.ApplyProgressWrite(1, false))

		row, err := repo.GetForUser(1)
		require.NoError(t, err)
		assert.Equal(t, 1, row.CurrentStreak)
	})

	t.Run("missing row reports ErrStatsNotFound", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		repo := NewRepository(db)
		err := repo.ApplyProgressWrite(99, true)
		assert.ErrorIs(t, err, ErrStatsNotFound)
	})
}

func TestRepository_AddReadingTime(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	err := repo.AddReadingTime(1, 30)
	assert.ErrorIs(t, err, ErrStatsNotFound)

	_, err = repo.CreateForUser(1)
	require.NoError(t, err)

	require.NoError(t, repo.AddReadingTime(1, 30))
	require.NoError(t, repo.AddReadingTime(1, 15))

	row, err := repo.GetForUser(1)
	require.NoError(t, err)
	assert.Equal(t, 45, row.TotalReadingTime)
	assert.Equal(t, 0, row.BooksRead)
}

func TestRepository_SweepExpiredStreaks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	for _, userID := range []uint{1, 2, 3} {
		_, err := repo.CreateForUser(userID)
		require.NoError(t, err)
		require.NoError(t, repo.ApplyProgressWrite(userID, false))
	}

	// Users 1 and 2 go stale, user 3 stays fresh
	backdate(t, db, 1, 48*time.Hour)
	backdate(t, db, 2, 30*time.Hour)

	reset, err := repo.SweepExpiredStreaks()
	require.NoError(t, err)
	assert.Equal(t, int64(2), reset)

	for userID, want := range map[uint]int{1: 0, 2: 0, 3: 1} {
		row, err := repo.GetForUser(userID)
		require.NoError(t, err)
		assert.Equal(t, want, row.CurrentStreak, "user %d", userID)
	}

	// Second sweep finds nothing left to reset
	reset, err = repo.SweepExpiredStreaks()
	require.NoError(t, err)
	assert.Equal(t, int64(0), reset)
}

func TestRepository_SetBooksRead(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	err := repo.SetBooksRead(1, 4)
	assert.ErrorIs(t, err, ErrStatsNotFound)

	_, err = repo.CreateForUser(1)
	require.NoError(t, err)

	require.NoError(t, repo.SetBooksRead(1, 4))

	row, err := repo.GetForUser(1)
	require.NoError(t, err)
	assert.Equal(t, 4, row.BooksRead)
}

func TestRepository_AllUserIDs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)

	ids, err := repo.AllUserIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, userID := range []uint{5, 8} {
		_, err := repo.CreateForUser(userID)
		require.NoError(t, err)
	}

	ids, err = repo.AllUserIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{5, 8}, ids)
}
