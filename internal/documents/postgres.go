package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
	"github.com/sahilkapur/ledgerdesk/pkg/repository"
)

const documentColumns = `id, filename, storage_key, tag, status, page_count,
	uploaded_by, uploaded_at, extracted, audit_notes, approved_by, approved_at, updated_at`

// PostgresStore is the Postgres document backend. Per-document serialization
// is provided by SELECT ... FOR UPDATE inside the Update transaction: the
// loser of a concurrent mutation blocks on the row lock and then observes
// the winner's committed state.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a document store over the given connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, doc *Document) error {
	extracted, err := marshalExtracted(doc.Extracted)
	if err != nil {
		return err
	}

	q := `
		INSERT INTO documents(` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q,
			doc.ID,
			doc.Filename,
			doc.StorageKey,
			doc.Tag,
			doc.Status,
			doc.PageCount,
			doc.UploadedBy,
			doc.UploadedAt,
			extracted,
			doc.AuditNotes,
			doc.ApprovedBy,
			doc.ApprovedAt,
			doc.UpdatedAt,
		)
		return struct{}{}, err
	})

	return repository.MapError(err, ErrNotFound, ErrConflict)
}

func (s *PostgresStore) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q := "SELECT " + documentColumns + " FROM documents WHERE id = $1"

	d, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrConflict)
	}
	return &d, nil
}

func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Document, error) {
	lockQ := "SELECT " + documentColumns + " FROM documents WHERE id = $1 FOR UPDATE"

	updateQ := `
		UPDATE documents
		SET status = $2, extracted = $3, audit_notes = $4,
			approved_by = $5, approved_at = $6, updated_at = $7
		WHERE id = $1`

	d, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Document, error) {
		doc, err := repository.QueryOne(ctx, tx, lockQ, []any{id}, scanDocument)
		if err != nil {
			return Document{}, err
		}

		if err := fn(&doc); err != nil {
			return Document{}, err
		}

		extracted, err := marshalExtracted(doc.Extracted)
		if err != nil {
			return Document{}, err
		}

		if err := repository.ExecExpectOne(ctx, tx, updateQ,
			doc.ID,
			doc.Status,
			extracted,
			doc.AuditNotes,
			doc.ApprovedBy,
			doc.ApprovedAt,
			doc.UpdatedAt,
		); err != nil {
			return Document{}, fmt.Errorf("update document: %w", err)
		}

		return doc, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrConflict)
	}
	return &d, nil
}

func (s *PostgresStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	where, args := buildWhere(page, filters)

	countQ := "SELECT COUNT(*) FROM documents" + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageQ := fmt.Sprintf(
		"SELECT %s FROM documents%s ORDER BY uploaded_at DESC LIMIT %d OFFSET %d",
		documentColumns, where, page.PageSize, page.Offset(),
	)

	docs, err := repository.QueryMany(ctx, s.db, pageQ, args, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func buildWhere(page pagination.PageRequest, filters Filters) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filters.Status != nil {
		add("status = $%d", *filters.Status)
	}
	if filters.Tag != nil {
		add("tag = $%d", *filters.Tag)
	}
	if filters.UploadedBy != nil {
		add("uploaded_by = $%d", *filters.UploadedBy)
	}
	if filters.HasExtraction != nil {
		if *filters.HasExtraction {
			clauses = append(clauses, "extracted IS NOT NULL")
		} else {
			clauses = append(clauses, "extracted IS NULL")
		}
	}
	if page.Search != nil && *page.Search != "" {
		add("filename ILIKE '%%' || $%d || '%%'", *page.Search)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func marshalExtracted(f *ExtractedFields) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal extracted fields: %w", err)
	}
	return data, nil
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d         Document
		extracted []byte
	)

	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.StorageKey,
		&d.Tag,
		&d.Status,
		&d.PageCount,
		&d.UploadedBy,
		&d.UploadedAt,
		&extracted,
		&d.AuditNotes,
		&d.ApprovedBy,
		&d.ApprovedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}

	if len(extracted) > 0 {
		var f ExtractedFields
		if err := json.Unmarshal(extracted, &f); err != nil {
			return Document{}, fmt.Errorf("unmarshal extracted fields: %w", err)
		}
		d.Extracted = &f
	}

	return d, nil
}
