package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Calculation is a single saved salary calculation belonging to an account.
// Records are append-only and listed newest first.
type Calculation struct {
	ID        string
	AccountID string
	Total     decimal.Decimal
	Details   json.RawMessage
	CreatedAt time.Time
}
