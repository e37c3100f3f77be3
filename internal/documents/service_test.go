package documents_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/internal/documents"
	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
	"github.com/sahilkapur/ledgerdesk/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(t *testing.T) (documents.System, *storage.Memory) {
	t.Helper()

	logger := testLogger()
	blobs := storage.NewMemory(logger)
	sys := documents.New(
		documents.NewMemoryStore(),
		blobs,
		logger,
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	return sys, blobs
}

func create(t *testing.T, sys documents.System, tag documents.Tag, uploader string) *documents.Document {
	t.Helper()

	doc, err := sys.Create(context.Background(), documents.CreateCommand{
		Data:        []byte("file contents"),
		Filename:    "invoice.pdf",
		ContentType: "application/pdf",
		Tag:         tag,
		UploadedBy:  uploader,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return doc
}

func fields() documents.ExtractedFields {
	return documents.ExtractedFields{
		VendorName: "XYZ Services Pvt Ltd",
		TaxID:      "29AABCT1332L1ZG",
		Amount:     45000,
		Date:       "2026-02-11",
		InvoiceNo:  "SRV-2026-045",
		LineItems: []documents.LineItem{
			{Description: "Consulting Services", Quantity: 1, Rate: 45000, Amount: 45000},
		},
	}
}

func TestCreateStartsPending(t *testing.T) {
	sys, blobs := newSystem(t)
	doc := create(t, sys, documents.TagPurchase, "intern@firm.test")

	if doc.Status != documents.StatusPending {
		t.Errorf("status = %s, want pending", doc.Status)
	}
	if doc.Extracted != nil {
		t.Error("new document should have no extraction")
	}
	if doc.ApprovedBy != nil || doc.ApprovedAt != nil {
		t.Error("new document should have no approval fields")
	}
	if doc.StorageKey == "" {
		t.Fatal("storage key not set")
	}

	exists, err := blobs.Exists(context.Background(), doc.StorageKey)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("file bytes not persisted to blob storage")
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  documents.CreateCommand
	}{
		{"unknown tag", documents.CreateCommand{Filename: "a.pdf", Tag: "payroll", UploadedBy: "x"}},
		{"empty tag", documents.CreateCommand{Filename: "a.pdf", UploadedBy: "x"}},
		{"missing filename", documents.CreateCommand{Tag: documents.TagSales, UploadedBy: "x"}},
		{"missing uploader", documents.CreateCommand{Filename: "a.pdf", Tag: documents.TagSales}},
	}

	sys, _ := newSystem(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Create(context.Background(), tt.cmd)
			if !errors.Is(err, documents.ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestFindUnknown(t *testing.T) {
	sys, _ := newSystem(t)

	_, err := sys.Find(context.Background(), uuid.New())
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAttachExtraction(t *testing.T) {
	sys, _ := newSystem(t)
	doc := create(t, sys, documents.TagExpense, "intern@firm.test")

	got, err := sys.AttachExtraction(context.Background(), doc.ID, fields())
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got.Extracted == nil || got.Extracted.InvoiceNo != "SRV-2026-045" {
		t.Fatalf("extraction = %+v", got.Extracted)
	}

	// wholesale replacement
	replacement := fields()
	replacement.Amount = 47500
	replacement.LineItems = nil

	got, err = sys.AttachExtraction(context.Background(), doc.ID, replacement)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Extracted.Amount != 47500 || len(got.Extracted.LineItems) != 0 {
		t.Errorf("replacement not wholesale: %+v", got.Extracted)
	}
}

func TestAttachExtractionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*documents.ExtractedFields)
	}{
		{"missing vendor", func(f *documents.ExtractedFields) { f.VendorName = "" }},
		{"missing invoice no", func(f *documents.ExtractedFields) { f.InvoiceNo = "" }},
		{"negative amount", func(f *documents.ExtractedFields) { f.Amount = -1 }},
		{"line item without description", func(f *documents.ExtractedFields) {
			f.LineItems = []documents.LineItem{{Quantity: 1, Rate: 10, Amount: 10}}
		}},
		{"negative line item", func(f *documents.ExtractedFields) {
			f.LineItems = []documents.LineItem{{Description: "x", Quantity: -1, Rate: 10, Amount: 10}}
		}},
	}

	sys, _ := newSystem(t)
	doc := create(t, sys, documents.TagExpense, "intern@firm.test")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields()
			tt.mutate(&f)

			_, err := sys.AttachExtraction(context.Background(), doc.ID, f)
			if !errors.Is(err, documents.ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestRejectedMutationLeavesNoPartialWrites(t *testing.T) {
	sys, _ := newSystem(t)
	doc := create(t, sys, documents.TagSales, "intern@firm.test")

	boom := errors.New("boom")
	_, err := sys.Apply(context.Background(), doc.ID, func(d *documents.Document) error {
		d.Status = documents.StatusFlagged
		d.AuditNotes = "half-applied"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	got, err := sys.Find(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != documents.StatusPending || got.AuditNotes != "" {
		t.Errorf("rejected mutation leaked: status=%s notes=%q", got.Status, got.AuditNotes)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	sys, _ := newSystem(t)
	doc := create(t, sys, documents.TagSales, "intern@firm.test")

	if _, err := sys.AttachExtraction(context.Background(), doc.ID, fields()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	snapshot, err := sys.Find(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	snapshot.Status = documents.StatusApproved
	snapshot.Extracted.Amount = 999999

	fresh, err := sys.Find(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if fresh.Status != documents.StatusPending {
		t.Error("mutating a returned snapshot changed canonical status")
	}
	if fresh.Extracted.Amount != 45000 {
		t.Error("mutating a returned snapshot changed canonical extraction")
	}
}

func TestListFilters(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	a := create(t, sys, documents.TagPurchase, "intern@firm.test")
	create(t, sys, documents.TagSales, "intern@firm.test")
	create(t, sys, documents.TagPurchase, "auditor@firm.test")

	if _, err := sys.AttachExtraction(ctx, a.ID, fields()); err != nil {
		t.Fatalf("attach: %v", err)
	}

	page := pagination.PageRequest{Page: 1, PageSize: 20}

	tag := documents.TagPurchase
	result, err := sys.List(ctx, page, documents.Filters{Tag: &tag})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("purchase total = %d, want 2", result.Total)
	}

	uploader := "auditor@firm.test"
	result, err = sys.List(ctx, page, documents.Filters{UploadedBy: &uploader})
	if err != nil {
		t.Fatalf("list by uploader: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("uploader total = %d, want 1", result.Total)
	}

	verified := true
	result, err = sys.List(ctx, page, documents.Filters{HasExtraction: &verified})
	if err != nil {
		t.Fatalf("list by extraction: %v", err)
	}
	if result.Total != 1 || result.Data[0].ID != a.ID {
		t.Errorf("extraction filter returned %d documents", result.Total)
	}

	unverified := false
	result, err = sys.List(ctx, page, documents.Filters{HasExtraction: &unverified})
	if err != nil {
		t.Fatalf("list unverified: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("unverified total = %d, want 2", result.Total)
	}
}

func TestListPagination(t *testing.T) {
	sys, _ := newSystem(t)

	for range 5 {
		create(t, sys, documents.TagExpense, "intern@firm.test")
	}

	result, err := sys.List(context.Background(), pagination.PageRequest{Page: 2, PageSize: 2}, documents.Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if result.Total != 5 {
		t.Errorf("total = %d, want 5", result.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("page length = %d, want 2", len(result.Data))
	}
	if result.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", result.TotalPages)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	f := documents.FiltersFromQuery(map[string][]string{
		"status":         {"pending"},
		"tag":            {"sales"},
		"uploaded_by":    {"intern@firm.test"},
		"has_extraction": {"true"},
	})

	if f.Status == nil || *f.Status != documents.StatusPending {
		t.Errorf("status = %v", f.Status)
	}
	if f.Tag == nil || *f.Tag != documents.TagSales {
		t.Errorf("tag = %v", f.Tag)
	}
	if f.UploadedBy == nil || *f.UploadedBy != "intern@firm.test" {
		t.Errorf("uploaded_by = %v", f.UploadedBy)
	}
	if f.HasExtraction == nil || !*f.HasExtraction {
		t.Errorf("has_extraction = %v", f.HasExtraction)
	}
}
