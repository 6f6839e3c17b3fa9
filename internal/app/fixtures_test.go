package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cimillas/ticket-sale/internal/clock"
	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/cimillas/ticket-sale/internal/storage/memory"
)

const (
	testAuthority domain.Identity = "admin"
	testBaseURI                   = "https://example.com/ticket"
	alice         domain.Identity = "alice"
	bob           domain.Identity = "bob"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testSale struct {
	store   *memory.Store
	sales   *SaleService
	admin   *AdminService
	query   *QueryService
	account *AccountService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSale boots a sale with the default tiers (5/10/15 minor units,
// supply 500 each) and funds alice and bob with 1000 each.
func newTestSale(t *testing.T) *testSale {
	t.Helper()
	store := memory.New()
	err := Bootstrap(context.Background(), store, BootstrapInput{
		Authority: testAuthority,
		BaseURI:   testBaseURI,
		Decimals:  domain.DefaultDecimals,
		Accounts:  map[domain.Identity]domain.Amount{alice: 1000, bob: 1000},
	}, quietLogger())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	clk := clock.NewStepping(testNow, time.Second)
	return &testSale{
		store:   store,
		sales:   NewSaleService(store, clk, WithSaleLogger(quietLogger())),
		admin:   NewAdminService(store, clk, WithAdminLogger(quietLogger())),
		query:   NewQueryService(store),
		account: NewAccountService(store),
	}
}

// ledgerSnapshot captures everything a failed call must leave untouched.
type ledgerSnapshot struct {
	state    domain.SaleState
	tiers    []domain.Tier
	balances map[domain.Identity][]int64
	funds    map[domain.Identity]domain.Amount
}

func (s *testSale) snapshot(t *testing.T) ledgerSnapshot {
	t.Helper()
	ctx := context.Background()
	state, err := s.store.GetState(ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	snap := ledgerSnapshot{
		state:    state,
		tiers:    tiers,
		balances: make(map[domain.Identity][]int64),
		funds:    make(map[domain.Identity]domain.Amount),
	}
	for _, holder := range []domain.Identity{alice, bob, testAuthority} {
		for _, tt := range domain.TicketTypes() {
			qty, err := s.store.GetBalance(ctx, holder, tt)
			if err != nil {
				t.Fatalf("get balance: %v", err)
			}
			snap.balances[holder] = append(snap.balances[holder], qty)
		}
		funds, err := s.store.GetAccountBalance(ctx, holder)
		if err != nil {
			t.Fatalf("get account: %v", err)
		}
		snap.funds[holder] = funds
	}
	return snap
}

func (s *testSale) assertUnchanged(t *testing.T, before ledgerSnapshot) {
	t.Helper()
	after := s.snapshot(t)
	if after.state != before.state {
		t.Fatalf("sale state changed: %+v -> %+v", before.state, after.state)
	}
	for i := range before.tiers {
		if after.tiers[i] != before.tiers[i] {
			t.Fatalf("tier changed: %+v -> %+v", before.tiers[i], after.tiers[i])
		}
	}
	for holder, qtys := range before.balances {
		for i, qty := range qtys {
			if after.balances[holder][i] != qty {
				t.Fatalf("balance of %s type %d changed: %d -> %d", holder, i, qty, after.balances[holder][i])
			}
		}
		if after.funds[holder] != before.funds[holder] {
			t.Fatalf("funds of %s changed: %d -> %d", holder, before.funds[holder], after.funds[holder])
		}
	}
}

// assertSupplyConsistent checks that every type's balances sum to minted.
func (s *testSale) assertSupplyConsistent(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	tiers, err := s.store.ListTiers(ctx)
	if err != nil {
		t.Fatalf("list tiers: %v", err)
	}
	for _, tier := range tiers {
		sum, err := s.store.SumBalances(ctx, tier.Type)
		if err != nil {
			t.Fatalf("sum balances: %v", err)
		}
		if sum != tier.Minted {
			t.Fatalf("type %s: balances sum %d, minted %d", tier.Type, sum, tier.Minted)
		}
	}
}

var errInjected = errors.New("injected failure")

// failingPurchaseStore fails the final write of a purchase so callers can
// observe that earlier writes of the same call were discarded.
type failingPurchaseStore struct {
	*memory.Store
}

func (f failingPurchaseStore) CreatePurchase(context.Context, domain.Purchase) error {
	return errInjected
}
