package investments_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sahilkapur/ledgerdesk/internal/investments"
	"github.com/sahilkapur/ledgerdesk/internal/rbac"
)

var (
	investor  = rbac.Principal{Identity: "investor@client.test", Role: rbac.RoleInvestor}
	other     = rbac.Principal{Identity: "other@client.test", Role: rbac.RoleInvestor}
	owner     = rbac.Principal{Identity: "owner@firm.test", Role: rbac.RoleOwner}
	head      = rbac.Principal{Identity: "head@firm.test", Role: rbac.RolePracticeHead}
	intern    = rbac.Principal{Identity: "intern@firm.test", Role: rbac.RoleArticle}
	impostor  = rbac.Principal{Identity: "x@client.test", Role: "ghost"}
)

func newLedger(t *testing.T) investments.System {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return investments.New(investments.NewMemoryStore(), rbac.NewRegistry(), logger)
}

func command(investorID string, amount float64) investments.AppendCommand {
	return investments.AppendCommand{
		InvestorID:  investorID,
		Date:        "2026-02-15",
		Type:        "equity",
		Amount:      amount,
		Description: "NIFTY index fund purchase",
	}
}

func TestAppendOwnLedger(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	first, err := ledger.Append(ctx, investor, command(investor.Identity, 50000))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := ledger.Append(ctx, investor, command(investor.Identity, 75000))
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := ledger.ListFor(ctx, investor, investor.Identity)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// insertion order, most-recent-first
	if records[0].ID != second.ID || records[1].ID != first.ID {
		t.Errorf("records not most-recent-first: %v then %v", records[0].ID, records[1].ID)
	}
}

func TestAppendGates(t *testing.T) {
	tests := []struct {
		name    string
		p       rbac.Principal
		target  string
		wantErr error
	}{
		{"investor own ledger", investor, investor.Identity, nil},
		{"investor foreign ledger", investor, other.Identity, rbac.ErrUnauthorized},
		{"owner any ledger", owner, investor.Identity, nil},
		{"article denied", intern, intern.Identity, rbac.ErrUnauthorized},
		{"practice head denied", head, head.Identity, rbac.ErrUnauthorized},
		{"unknown role", impostor, impostor.Identity, rbac.ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newLedger(t)

			_, err := ledger.Append(context.Background(), tt.p, command(tt.target, 1000))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("got %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppendValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*investments.AppendCommand)
	}{
		{"zero amount", func(c *investments.AppendCommand) { c.Amount = 0 }},
		{"negative amount", func(c *investments.AppendCommand) { c.Amount = -100 }},
		{"missing date", func(c *investments.AppendCommand) { c.Date = "" }},
		{"missing type", func(c *investments.AppendCommand) { c.Type = "" }},
	}

	ledger := newLedger(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := command(investor.Identity, 1000)
			tt.mutate(&cmd)

			_, err := ledger.Append(context.Background(), investor, cmd)
			if !errors.Is(err, investments.ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestListForGates(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, investor, command(investor.Identity, 50000)); err != nil {
		t.Fatalf("append: %v", err)
	}

	tests := []struct {
		name    string
		p       rbac.Principal
		target  string
		wantErr error
	}{
		{"investor own ledger", investor, investor.Identity, nil},
		{"investor foreign ledger", other, investor.Identity, rbac.ErrUnauthorized},
		{"practice head any ledger", head, investor.Identity, nil},
		{"owner any ledger", owner, investor.Identity, nil},
		{"article denied", intern, investor.Identity, rbac.ErrUnauthorized},
		{"unknown role", impostor, investor.Identity, rbac.ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.ListFor(ctx, tt.p, tt.target)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("got %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordsAreImmutableSnapshots(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()

	statement := "statements/feb-2026.pdf"
	cmd := command(investor.Identity, 50000)
	cmd.BrokerStatement = &statement

	if _, err := ledger.Append(ctx, investor, cmd); err != nil {
		t.Fatalf("append: %v", err)
	}

	records, err := ledger.ListFor(ctx, investor, investor.Identity)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	records[0].Amount = 1
	*records[0].BrokerStatement = "tampered"

	fresh, err := ledger.ListFor(ctx, investor, investor.Identity)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if fresh[0].Amount != 50000 {
		t.Error("mutating a returned record changed the ledger")
	}
	if *fresh[0].BrokerStatement != statement {
		t.Error("mutating a returned pointer field changed the ledger")
	}
}

func TestEmptyLedger(t *testing.T) {
	ledger := newLedger(t)

	records, err := ledger.ListFor(context.Background(), investor, investor.Identity)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
