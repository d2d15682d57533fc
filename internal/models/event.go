package models

import "time"

// IngestEvent is published to Kafka after each ETF file is loaded.
type IngestEvent struct {
	EventType    string    `json:"event_type"`
	EtfID        int64     `json:"etf_id"`
	Date         string    `json:"dt"`
	RowsInserted int64     `json:"rows_inserted"`
	RowsSkipped  int64     `json:"rows_skipped"`
	Timestamp    time.Time `json:"timestamp"`
}
