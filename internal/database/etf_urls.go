package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/anthonyprinaldi/blackrock-etf-holdings/internal/models"
)

// CreateETFSource registers the download URL for an ETF's holdings export.
// An already-registered ETF is left untouched.
func (db *DB) CreateETFSource(u *models.ETFSource) error {
	query := `
		INSERT INTO etf_urls (etf_id, csv_url, base_url, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (etf_id) DO NOTHING
	`
	now := time.Now()
	_, err := db.conn.Exec(query, u.EtfID, u.CSVURL, u.BaseURL, now)
	if err != nil {
		return fmt.Errorf("failed to create etf source: %w", err)
	}
	u.CreatedAt = now
	return nil
}

// GetETFSources retrieves all registered holdings download URLs
func (db *DB) GetETFSources() ([]*models.ETFSource, error) {
	query := `
		SELECT etf_id, csv_url, base_url, created_at
		FROM etf_urls
		ORDER BY etf_id ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get etf sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.ETFSource
	for rows.Next() {
		var u models.ETFSource
		var baseURL sql.NullString
		if err := rows.Scan(&u.EtfID, &u.CSVURL, &baseURL, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan etf source: %w", err)
		}
		if baseURL.Valid {
			u.BaseURL = baseURL.String
		}
		sources = append(sources, &u)
	}

	return sources, nil
}
