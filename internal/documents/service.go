package documents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
	"github.com/sahilkapur/ledgerdesk/pkg/storage"
)

type service struct {
	store      Store
	blobs      storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the document system over the given persistence backend and
// blob storage. File bytes are handed to blob storage outside any document
// critical section; the store keeps only the opaque key.
func New(
	store Store,
	blobs storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &service{
		store:      store,
		blobs:      blobs,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (s *service) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(s.pagination)
	return s.store.List(ctx, page, filters)
}

func (s *service) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.store.Find(ctx, id)
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if !cmd.Tag.Valid() {
		return nil, validationError("unknown tag: %q", cmd.Tag)
	}
	if cmd.Filename == "" {
		return nil, validationError("filename is required")
	}
	if cmd.UploadedBy == "" {
		return nil, validationError("uploader identity is required")
	}

	id := newID()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := s.blobs.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:         id,
		Filename:   cmd.Filename,
		StorageKey: key,
		Tag:        cmd.Tag,
		Status:     StatusPending,
		PageCount:  cmd.PageCount,
		UploadedBy: cmd.UploadedBy,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if err := s.store.Insert(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"tag", doc.Tag,
		"filename", doc.Filename,
		"uploaded_by", doc.UploadedBy,
	)
	return doc, nil
}

func (s *service) AttachExtraction(ctx context.Context, id uuid.UUID, fields ExtractedFields) (*Document, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	doc, err := s.store.Update(ctx, id, func(d *Document) error {
		if d.Status == StatusApproved {
			return fmt.Errorf("%w: extraction cannot be replaced on an approved document", ErrInvalidState)
		}
		d.Extracted = fields.Clone()
		d.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("extraction attached", "id", id, "amount", fields.Amount)
	return doc, nil
}

func (s *service) SetAuditNotes(ctx context.Context, id uuid.UUID, notes string) (*Document, error) {
	return s.store.Update(ctx, id, func(d *Document) error {
		if d.Status == StatusApproved {
			return fmt.Errorf("%w: audit notes are frozen on an approved document", ErrInvalidState)
		}
		d.AuditNotes = notes
		d.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *service) Apply(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Document, error) {
	return s.store.Update(ctx, id, fn)
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
