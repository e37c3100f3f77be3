package investments

import (
	"context"
	"database/sql"

	"github.com/sahilkapur/ledgerdesk/pkg/repository"
)

// PostgresStore persists ledger records in the investments table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `
	id, investor_id, date, type, amount, description, broker_statement, created_at
`

func (s *PostgresStore) Insert(ctx context.Context, record *Record) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, `
			INSERT INTO investments (`+recordColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			record.ID,
			record.InvestorID,
			record.Date,
			record.Type,
			record.Amount,
			record.Description,
			record.BrokerStatement,
			record.CreatedAt,
		)
		return struct{}{}, err
	})
	return repository.MapError(err, ErrNotFound, ErrConflict)
}

func (s *PostgresStore) ListFor(ctx context.Context, investorID string) ([]Record, error) {
	records, err := repository.QueryMany(ctx, s.db, `
		SELECT `+recordColumns+`
		FROM investments
		WHERE investor_id = $1
		ORDER BY created_at DESC`,
		[]any{investorID}, scanRecord,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrConflict)
	}
	return records, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var r Record
	err := s.Scan(
		&r.ID,
		&r.InvestorID,
		&r.Date,
		&r.Type,
		&r.Amount,
		&r.Description,
		&r.BrokerStatement,
		&r.CreatedAt,
	)
	return r, err
}
