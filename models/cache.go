package models

import (
	"database/sql"
	"time"
)

// CacheEntry is one row of the LLM compute cache. Response is NULL while
// a claim is in flight.
type CacheEntry struct {
	Hash      string         `db:"hash"`
	ModelName string         `db:"model_name"`
	Request   string         `db:"request"`
	Response  sql.NullString `db:"response"`
	CreatedAt time.Time      `db:"created_at"`
}
