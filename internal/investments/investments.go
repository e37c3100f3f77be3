// Package investments implements the investment ledger for LedgerDesk.
// The ledger is an append-only record set per investor: records are created
// once and never mutated or deleted.
package investments

import (
	"time"

	"github.com/google/uuid"
)

// Record is a single immutable entry in an investor's ledger.
type Record struct {
	ID              uuid.UUID `json:"id"`
	InvestorID      string    `json:"investor_id"`
	Date            string    `json:"date"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Description     string    `json:"description"`
	BrokerStatement *string   `json:"broker_statement,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Clone returns a copy of the record with no shared pointers.
func (r *Record) Clone() *Record {
	c := *r
	if r.BrokerStatement != nil {
		v := *r.BrokerStatement
		c.BrokerStatement = &v
	}
	return &c
}

// AppendCommand carries the data for a new ledger entry.
type AppendCommand struct {
	InvestorID      string  `json:"investor_id"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	BrokerStatement *string `json:"broker_statement,omitempty"`
}

// Validate checks the command for malformed input.
func (c *AppendCommand) Validate() error {
	if c.InvestorID == "" {
		return validationError("investor_id is required")
	}
	if c.Date == "" {
		return validationError("date is required")
	}
	if c.Type == "" {
		return validationError("type is required")
	}
	if c.Amount <= 0 {
		return validationError("amount must be positive")
	}
	return nil
}
