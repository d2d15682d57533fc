package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

func TestStocksRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateStock creates new stock", func(t *testing.T) {
		testDB.TruncateAll(t)

		stock := &models.Stock{
			Symbol:   "AAPL",
			Name:     "Apple Inc.",
			Exchange: "NASDAQ",
		}
		err := testDB.CreateStock(stock)
		require.NoError(t, err)
		assert.NotZero(t, stock.ID)
	})

	t.Run("CreateStock is a no-op for existing symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		first := &models.Stock{Symbol: "AAPL", Name: "Apple Inc."}
		require.NoError(t, testDB.CreateStock(first))

		second := &models.Stock{Symbol: "AAPL", Name: "Apple Computer"}
		require.NoError(t, testDB.CreateStock(second))
		assert.Equal(t, first.ID, second.ID)

		// The original row wins.
		retrieved, err := testDB.GetStockBySymbol("AAPL")
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc.", retrieved.Name)
	})

	t.Run("GetStockBySymbol retrieves by symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		year := 1996
		country := "United States"
		stock := &models.Stock{
			Symbol:  "BRK.B",
			Name:    "Berkshire Hathaway Inc. Class B",
			Country: &country,
			IPOYear: &year,
		}
		require.NoError(t, testDB.CreateStock(stock))

		retrieved, err := testDB.GetStockBySymbol("BRK.B")
		require.NoError(t, err)
		assert.Equal(t, "BRK.B", retrieved.Symbol)
		assert.Equal(t, "Berkshire Hathaway Inc. Class B", retrieved.Name)
		require.NotNil(t, retrieved.IPOYear)
		assert.Equal(t, 1996, *retrieved.IPOYear)
	})

	t.Run("GetStockBySymbol is case-sensitive", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateStock(&models.Stock{Symbol: "AAPL", Name: "Apple Inc."}))

		_, err := testDB.GetStockBySymbol("aapl")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("GetStockByID retrieves by id", func(t *testing.T) {
		testDB.TruncateAll(t)

		stock := &models.Stock{Symbol: "MSFT", Name: "Microsoft Corporation"}
		require.NoError(t, testDB.CreateStock(stock))

		retrieved, err := testDB.GetStockByID(stock.ID)
		require.NoError(t, err)
		assert.Equal(t, "MSFT", retrieved.Symbol)
	})

	t.Run("LookupStockID reports missing symbols without error", func(t *testing.T) {
		testDB.TruncateAll(t)

		stock := &models.Stock{Symbol: "NVDA", Name: "NVIDIA Corporation"}
		require.NoError(t, testDB.CreateStock(stock))

		id, ok, err := testDB.LookupStockID("NVDA")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, stock.ID, id)

		_, ok, err = testDB.LookupStockID("ZZZZ")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestETFSources(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateETFSource and GetETFSources", func(t *testing.T) {
		testDB.TruncateAll(t)

		etf := &models.Stock{Symbol: "IVV", Name: "iShares Core S&P 500 ETF"}
		require.NoError(t, testDB.CreateStock(etf))

		src := &models.ETFSource{
			EtfID:   etf.ID,
			CSVURL:  "https://www.blackrock.com/ivv/holdings.csv?fileName=IVV_holdings",
			BaseURL: "https://www.blackrock.com/ivv",
		}
		require.NoError(t, testDB.CreateETFSource(src))

		// Re-registering is a no-op.
		dup := &models.ETFSource{EtfID: etf.ID, CSVURL: "https://other.example/ivv.csv"}
		require.NoError(t, testDB.CreateETFSource(dup))

		sources, err := testDB.GetETFSources()
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Equal(t, etf.ID, sources[0].EtfID)
		assert.Equal(t, src.CSVURL, sources[0].CSVURL)
	})
}
