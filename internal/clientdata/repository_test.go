package clientdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/fundnav/internal/domain"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	return db
}

func sampleHoldings() *domain.HoldingsSnapshot {
	return &domain.HoldingsSnapshot{
		FundID: "110011",
		Period: "2024年4季度",
		Entries: []domain.HoldingEntry{
			{InstrumentID: "600519", Name: "贵州茅台", WeightPercent: 9.95},
			{InstrumentID: "00700", Name: "腾讯控股", WeightPercent: 9.8},
		},
	}
}

func TestSchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec(Schema)
	assert.NoError(t, err)
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store(TableFundHoldings, "110011", sampleHoldings(), TTLFundHoldings))

	var got domain.HoldingsSnapshot
	found, err := repo.GetIfFresh(TableFundHoldings, "110011", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *sampleHoldings(), got)
}

func TestGetIfFresh_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	var got domain.HoldingsSnapshot
	found, err := repo.GetIfFresh(TableFundHoldings, "000000", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetIfFresh_ExpiredButGetReturnsStale(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store(TableFundHoldings, "110011", sampleHoldings(), -time.Hour))

	var fresh domain.HoldingsSnapshot
	found, err := repo.GetIfFresh(TableFundHoldings, "110011", &fresh)
	require.NoError(t, err)
	assert.False(t, found)

	var stale domain.HoldingsSnapshot
	found, err = repo.Get(TableFundHoldings, "110011", &stale)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2024年4季度", stale.Period)
}

func TestStore_Upserts(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	first := []domain.FundInfo{{Code: "000001", Name: "华夏成长混合"}}
	second := []domain.FundInfo{{Code: "000001", Name: "华夏成长混合"}, {Code: "161725", Name: "招商中证白酒指数(LOF)A"}}

	require.NoError(t, repo.Store(TableFundDirectory, "all", first, TTLFundDirectory))
	require.NoError(t, repo.Store(TableFundDirectory, "all", second, TTLFundDirectory))

	var got []domain.FundInfo
	found, err := repo.Get(TableFundDirectory, "all", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got, 2)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM fund_directory").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store(TableFundHoldings, "110011", sampleHoldings(), TTLFundHoldings))
	require.NoError(t, repo.Delete(TableFundHoldings, "110011"))

	var got domain.HoldingsSnapshot
	found, err := repo.Get(TableFundHoldings, "110011", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	var out interface{}

	assert.Error(t, repo.Store("users; DROP TABLE fund_holdings", "x", 1, time.Hour))
	_, err := repo.GetIfFresh("nope", "x", &out)
	assert.Error(t, err)
	_, err = repo.Get("nope", "x", &out)
	assert.Error(t, err)
	assert.Error(t, repo.Delete("nope", "x"))
	_, err = repo.DeleteExpired("nope")
	assert.Error(t, err)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Store(TableFundHoldings, "expired", sampleHoldings(), -time.Hour))
	require.NoError(t, repo.Store(TableFundHoldings, "fresh", sampleHoldings(), time.Hour))
	require.NoError(t, repo.Store(TableFundDirectory, "all", []domain.FundInfo{}, -time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[TableFundHoldings])
	assert.Equal(t, int64(1), results[TableFundDirectory])

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM fund_holdings").Scan(&count))
	assert.Equal(t, 1, count)
}
