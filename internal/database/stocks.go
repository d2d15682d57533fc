package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// CreateStock inserts a stock into the reference table. Stocks are onboarded
// by a separate process; re-inserting an existing symbol is a no-op and the
// existing row's id is returned on the model.
func (db *DB) CreateStock(s *models.Stock) error {
	query := `
		INSERT INTO stocks (symbol, name, exchange, country, ipo_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		s.Symbol, s.Name, s.Exchange, s.Country, s.IPOYear, now,
	).Scan(&s.ID)

	if err == sql.ErrNoRows {
		// Conflict path: the symbol already exists.
		existing, err := db.GetStockBySymbol(s.Symbol)
		if err != nil {
			return err
		}
		s.ID = existing.ID
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	s.CreatedAt = now
	return nil
}

// GetStockBySymbol retrieves a stock by its symbol (case-sensitive)
func (db *DB) GetStockBySymbol(symbol string) (*models.Stock, error) {
	query := `
		SELECT id, symbol, name, exchange, country, ipo_year, created_at
		FROM stocks
		WHERE symbol = $1
	`
	return db.scanStock(db.conn.QueryRow(query, symbol), symbol)
}

// GetStockByID retrieves a stock by id
func (db *DB) GetStockByID(id int64) (*models.Stock, error) {
	query := `
		SELECT id, symbol, name, exchange, country, ipo_year, created_at
		FROM stocks
		WHERE id = $1
	`
	return db.scanStock(db.conn.QueryRow(query, id), fmt.Sprintf("id %d", id))
}

// LookupStockID resolves a symbol to a stock id. A missing symbol is not an
// error; the second return reports whether the symbol exists.
func (db *DB) LookupStockID(symbol string) (int64, bool, error) {
	query := `SELECT id FROM stocks WHERE symbol = $1`
	var id int64
	err := db.conn.QueryRow(query, symbol).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up stock id: %w", err)
	}
	return id, true, nil
}

func (db *DB) scanStock(row *sql.Row, key string) (*models.Stock, error) {
	var s models.Stock
	var exchange sql.NullString
	var country sql.NullString
	var ipoYear sql.NullInt64

	err := row.Scan(&s.ID, &s.Symbol, &s.Name, &exchange, &country, &ipoYear, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stock not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	if exchange.Valid {
		s.Exchange = exchange.String
	}
	if country.Valid {
		s.Country = &country.String
	}
	if ipoYear.Valid {
		year := int(ipoYear.Int64)
		s.IPOYear = &year
	}
	return &s, nil
}
