package prices

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rainmaker/riskd/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE daily_prices (
			ticker TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL CHECK (close > 0),
			PRIMARY KEY (ticker, date)
		)
	`)
	require.NoError(t, err)

	return db
}

func seed(t *testing.T, repo *Repository) {
	t.Helper()
	require.NoError(t, repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "AAA", Date: "2024-01-01", Close: 100},
		{Ticker: "AAA", Date: "2024-01-02", Close: 101},
		{Ticker: "AAA", Date: "2024-01-03", Close: 99},
		{Ticker: "BBB", Date: "2024-01-01", Close: 50},
		{Ticker: "BBB", Date: "2024-01-02", Close: 49},
	}))
}

func TestGetDailyCloses(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	seed(t, repo)

	points, err := repo.GetDailyCloses([]string{"AAA", "BBB", "ZZZ"})
	require.NoError(t, err)
	require.Len(t, points, 5)

	// Ordered by date then ticker; the unknown ticker is simply absent
	assert.Equal(t, domain.PricePoint{Ticker: "AAA", Date: "2024-01-01", Close: 100}, points[0])
	assert.Equal(t, domain.PricePoint{Ticker: "BBB", Date: "2024-01-01", Close: 50}, points[1])
	assert.Equal(t, domain.PricePoint{Ticker: "AAA", Date: "2024-01-03", Close: 99}, points[4])

	points, err = repo.GetDailyCloses(nil)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGetLatestCloses(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	seed(t, repo)

	latest, err := repo.GetLatestCloses([]string{"aaa", "BBB", "ZZZ"})
	require.NoError(t, err)

	require.Len(t, latest, 2)
	assert.InDelta(t, 99.0, latest["AAA"], 1e-12)
	assert.InDelta(t, 49.0, latest["BBB"], 1e-12)
	assert.NotContains(t, latest, "ZZZ")
}

func TestUpsertBatchReplacesAndNormalizes(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	seed(t, repo)

	require.NoError(t, repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "aaa", Date: "2024-01-03", Close: 98.5},
	}))

	points, err := repo.GetByTicker("AAA")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 98.5, points[2].Close, 1e-12)
}

func TestUpsertBatchValidation(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	assert.Error(t, repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "", Date: "2024-01-01", Close: 100},
	}))
	assert.Error(t, repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "AAA", Date: "2024-01-01", Close: 0},
	}))
	assert.Error(t, repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "AAA", Date: "01/02/2024", Close: 100},
	}))

	// A failed batch is rolled back as a whole
	err := repo.UpsertBatch([]domain.PricePoint{
		{Ticker: "AAA", Date: "2024-01-01", Close: 100},
		{Ticker: "AAA", Date: "2024-01-02", Close: -1},
	})
	require.Error(t, err)

	points, err := repo.GetByTicker("AAA")
	require.NoError(t, err)
	assert.Empty(t, points)

	assert.NoError(t, repo.UpsertBatch(nil))
}

func TestGetByTicker(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	seed(t, repo)

	points, err := repo.GetByTicker("bbb")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, "2024-01-02", points[1].Date)
}
