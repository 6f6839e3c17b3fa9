package app

import (
	"context"
	"testing"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/cimillas/ticket-sale/internal/storage/memory"
)

func TestQueryService_Tiers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSale(t)

	views, err := s.query.Tiers(ctx)
	if err != nil {
		t.Fatalf("tiers: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(views))
	}
	wantPrices := []domain.Amount{5, 10, 15}
	for i, view := range views {
		if view.Type != domain.TicketType(i) {
			t.Fatalf("expected tiers ordered by id, got %s at %d", view.Type, i)
		}
		if view.UnitPrice != wantPrices[i] || view.Available != 500 {
			t.Fatalf("unexpected view %+v", view)
		}
		if view.URI != domain.TicketURI(testBaseURI, view.Type) {
			t.Fatalf("unexpected uri %q", view.URI)
		}
	}

	if _, err := s.query.Tier(ctx, domain.Unknown); err != domain.ErrInvalidTicketType {
		t.Fatalf("expected ErrInvalidTicketType, got %v", err)
	}
	if _, err := s.query.URI(ctx, domain.Unknown); err != domain.ErrInvalidTicketType {
		t.Fatalf("expected ErrInvalidTicketType, got %v", err)
	}
	if maxSupply, _ := s.query.MaxSupply(ctx, domain.VIP); maxSupply != 500 {
		t.Fatalf("expected max supply 500, got %d", maxSupply)
	}
}

func TestQueryService_HolderViews(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSale(t)

	if _, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.VIP, Quantity: 2, Paid: 30}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := s.sales.MintBatch(ctx, MintBatchInput{
		Caller:     alice,
		Types:      []domain.TicketType{domain.Regular, domain.VIP},
		Quantities: []int64{1, 1},
		Paid:       20,
	}); err != nil {
		t.Fatalf("mint batch: %v", err)
	}

	balances, err := s.query.BalancesOf(ctx, alice)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	want := []int64{1, 0, 3}
	for i, b := range balances {
		if b.Quantity != want[i] {
			t.Fatalf("type %s: expected %d, got %d", b.Type, want[i], b.Quantity)
		}
	}

	purchases, err := s.query.Purchases(ctx, alice)
	if err != nil {
		t.Fatalf("purchases: %v", err)
	}
	if len(purchases) != 2 || len(purchases[1].Lines) != 2 {
		t.Fatalf("unexpected purchases %+v", purchases)
	}
	if !purchases[0].CreatedAt.Before(purchases[1].CreatedAt) {
		t.Fatalf("expected purchases in creation order")
	}
	if others, _ := s.query.Purchases(ctx, bob); len(others) != 0 {
		t.Fatalf("expected no purchases for bob, got %d", len(others))
	}

	if _, err := s.query.BalancesOf(ctx, ""); err != domain.ErrInvalidIdentity {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
	if _, err := s.query.BalanceOf(ctx, alice, domain.Unknown); err != domain.ErrInvalidTicketType {
		t.Fatalf("expected ErrInvalidTicketType, got %v", err)
	}
}

func TestQueryService_NotInitialized(t *testing.T) {
	t.Parallel()

	q := NewQueryService(memory.New())
	if _, err := q.Status(context.Background()); err != domain.ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
