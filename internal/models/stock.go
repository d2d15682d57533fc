package models

import "time"

// Stock is a row in the stocks reference table. ETFs live in the same table
// and are distinguished only by how they are used: an etf_id is just a stock
// id that appears on the ETF side of a holding.
type Stock struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Exchange  string    `json:"exchange,omitempty"`
	Country   *string   `json:"country,omitempty"`
	IPOYear   *int      `json:"ipo_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ETFSource links an ETF to the URL its holdings export is downloaded from.
type ETFSource struct {
	EtfID     int64     `json:"etf_id"`
	CSVURL    string    `json:"csv_url"`
	BaseURL   string    `json:"base_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
