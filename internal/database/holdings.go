package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// UpsertHoldings persists one aggregated batch (one ETF file) in a single
// transaction. A duplicate natural key (etf_id, stock_id, dt) is skipped
// silently; any other error rolls back the whole batch. Returns how many
// rows were inserted and how many were skipped as duplicates.
func (db *DB) UpsertHoldings(batch []models.Holding) (inserted, skipped int64, err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO etf_holdings (etf_id, stock_id, dt, num_shares, weight, market_value, average_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (etf_id, stock_id, dt) DO NOTHING
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, h := range batch {
		res, err := stmt.Exec(h.EtfID, h.StockID, h.Date, h.NumShares, h.Weight, h.MarketValue, h.AveragePrice, now)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert holding for stock %d: %w", h.StockID, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
		skipped += 1 - n
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, skipped, nil
}

// GetHolding retrieves a single holdings row by its natural key
func (db *DB) GetHolding(etfID, stockID int64, date time.Time) (*models.Holding, error) {
	query := `
		SELECT etf_id, stock_id, dt, num_shares, weight, market_value, average_price, created_at
		FROM etf_holdings
		WHERE etf_id = $1 AND stock_id = $2 AND dt = $3
	`
	var h models.Holding
	err := db.conn.QueryRow(query, etfID, stockID, date).Scan(
		&h.EtfID, &h.StockID, &h.Date, &h.NumShares, &h.Weight, &h.MarketValue, &h.AveragePrice, &h.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("holding not found: etf %d stock %d on %s", etfID, stockID, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// CountHoldings returns the number of holdings rows for an ETF
func (db *DB) CountHoldings(etfID int64) (int64, error) {
	var n int64
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM etf_holdings WHERE etf_id = $1`, etfID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return n, nil
}

// GetTopChanges computes the largest day-over-day position changes per ETF
// across the two most recent snapshot dates in the store. Pairs with no
// prior snapshot and pairs whose share count did not move are excluded,
// then rows are ranked per ETF by signed shares change descending (symbol
// breaks ties at the cutoff) and cut at topN. The final ordering is a
// separate pass: within each ETF, by absolute shares change descending.
// Selection uses the signed rank; presentation uses the magnitude.
func (db *DB) GetTopChanges(topN int) ([]models.ChangeRow, error) {
	query := `
		WITH mv AS (
			SELECT
				s2.symbol AS etf,
				s2.name AS etf_name,
				s1.symbol AS stock,
				s1.name AS stock_name,
				dt,
				market_value AS mv_today,
				LAG(market_value) OVER (
					PARTITION BY etf_id, stock_id ORDER BY dt
				) AS mv_yesterday,
				num_shares AS shares_today,
				LAG(num_shares) OVER (
					PARTITION BY etf_id, stock_id ORDER BY dt
				) AS shares_yesterday
			FROM etf_holdings
			LEFT JOIN stocks s1 ON etf_holdings.stock_id = s1.id
			LEFT JOIN stocks s2 ON etf_holdings.etf_id = s2.id
			WHERE dt = (SELECT MAX(dt) FROM etf_holdings)
			OR dt = (SELECT MAX(dt) FROM etf_holdings WHERE dt != (SELECT MAX(dt) FROM etf_holdings))
		),
		change AS (
			SELECT
				etf,
				etf_name,
				stock,
				stock_name,
				dt,
				mv_today - mv_yesterday AS market_value_change,
				shares_today - shares_yesterday AS shares_change
			FROM mv
			WHERE dt = (SELECT MAX(dt) FROM etf_holdings)
			AND shares_yesterday IS NOT NULL
			AND shares_today - shares_yesterday <> 0
		)
		SELECT etf, etf_name, stock, stock_name, dt, shares_change, market_value_change
		FROM (
			SELECT
				change.*,
				rank() OVER (
					PARTITION BY etf
					ORDER BY shares_change DESC, stock ASC
				) AS rnk
			FROM change
		) ranked
		WHERE rnk <= $1
		ORDER BY etf, ABS(shares_change) DESC, stock
	`
	rows, err := db.conn.Query(query, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to query top changes: %w", err)
	}
	defer rows.Close()

	var changes []models.ChangeRow
	for rows.Next() {
		var c models.ChangeRow
		err := rows.Scan(
			&c.ETFSymbol, &c.ETFName, &c.StockSymbol, &c.StockName,
			&c.Date, &c.SharesChange, &c.MarketValueChange,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change row: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read change rows: %w", err)
	}

	return changes, nil
}
