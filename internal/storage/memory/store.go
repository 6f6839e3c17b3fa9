// Package memory keeps the sale in process memory. Write calls are
// serialized by a single lock and run against a working copy that replaces
// the committed state only when the call succeeds.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cimillas/ticket-sale/internal/domain"
)

type balanceKey struct {
	holder domain.Identity
	t      domain.TicketType
}

type snapshot struct {
	initialized bool
	state       domain.SaleState
	tiers       map[domain.TicketType]domain.Tier
	balances    map[balanceKey]int64
	accounts    map[domain.Identity]domain.Amount
	purchases   []domain.Purchase
	withdrawals []domain.Withdrawal
}

func newSnapshot() *snapshot {
	return &snapshot{
		tiers:    make(map[domain.TicketType]domain.Tier),
		balances: make(map[balanceKey]int64),
		accounts: make(map[domain.Identity]domain.Amount),
	}
}

// clone copies the mutable maps. The record logs are append-only, so capping
// their capacity is enough to keep appends off the committed backing array.
func (s *snapshot) clone() *snapshot {
	c := &snapshot{
		initialized: s.initialized,
		state:       s.state,
		tiers:       make(map[domain.TicketType]domain.Tier, len(s.tiers)),
		balances:    make(map[balanceKey]int64, len(s.balances)),
		accounts:    make(map[domain.Identity]domain.Amount, len(s.accounts)),
		purchases:   s.purchases[:len(s.purchases):len(s.purchases)],
		withdrawals: s.withdrawals[:len(s.withdrawals):len(s.withdrawals)],
	}
	for k, v := range s.tiers {
		c.tiers[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	return c
}

type Store struct {
	mu        sync.RWMutex
	committed *snapshot
}

func New() *Store {
	return &Store{committed: newSnapshot()}
}

type txKey struct{}

func txFromContext(ctx context.Context) *snapshot {
	snap, _ := ctx.Value(txKey{}).(*snapshot)
	return snap
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.committed.clone()
	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	s.committed = work
	return nil
}

func (s *Store) read(ctx context.Context, fn func(snap *snapshot) error) error {
	if snap := txFromContext(ctx); snap != nil {
		return fn(snap)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

func (s *Store) write(ctx context.Context, fn func(snap *snapshot) error) error {
	if snap := txFromContext(ctx); snap != nil {
		return fn(snap)
	}
	return s.WithTx(ctx, func(txCtx context.Context) error {
		return fn(txFromContext(txCtx))
	})
}

func (s *Store) Initialize(ctx context.Context, state domain.SaleState, tiers []domain.Tier) (bool, error) {
	created := false
	err := s.write(ctx, func(snap *snapshot) error {
		if snap.initialized {
			return nil
		}
		snap.initialized = true
		snap.state = state
		for _, tier := range tiers {
			snap.tiers[tier.Type] = tier
		}
		created = true
		return nil
	})
	return created, err
}

func (s *Store) GetState(ctx context.Context) (domain.SaleState, error) {
	var state domain.SaleState
	err := s.read(ctx, func(snap *snapshot) error {
		if !snap.initialized {
			return domain.ErrNotInitialized
		}
		state = snap.state
		return nil
	})
	return state, err
}

// LockState reads the state; the writer lock held by WithTx already
// serializes the call.
func (s *Store) LockState(ctx context.Context) (domain.SaleState, error) {
	return s.GetState(ctx)
}

func (s *Store) SaveState(ctx context.Context, state domain.SaleState) error {
	return s.write(ctx, func(snap *snapshot) error {
		if !snap.initialized {
			return domain.ErrNotInitialized
		}
		snap.state = state
		return nil
	})
}

func (s *Store) GetTier(ctx context.Context, t domain.TicketType) (domain.Tier, error) {
	var tier domain.Tier
	err := s.read(ctx, func(snap *snapshot) error {
		if !snap.initialized {
			return domain.ErrNotInitialized
		}
		found, ok := snap.tiers[t]
		if !ok {
			return domain.ErrInvalidTicketType
		}
		tier = found
		return nil
	})
	return tier, err
}

func (s *Store) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	var tiers []domain.Tier
	err := s.read(ctx, func(snap *snapshot) error {
		if !snap.initialized {
			return domain.ErrNotInitialized
		}
		tiers = make([]domain.Tier, 0, len(snap.tiers))
		for _, tier := range snap.tiers {
			tiers = append(tiers, tier)
		}
		return nil
	})
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Type < tiers[j].Type })
	return tiers, err
}

func (s *Store) SaveTier(ctx context.Context, tier domain.Tier) error {
	return s.write(ctx, func(snap *snapshot) error {
		if _, ok := snap.tiers[tier.Type]; !ok {
			return domain.ErrInvalidTicketType
		}
		snap.tiers[tier.Type] = tier
		return nil
	})
}

func (s *Store) GetBalance(ctx context.Context, holder domain.Identity, t domain.TicketType) (int64, error) {
	var qty int64
	err := s.read(ctx, func(snap *snapshot) error {
		qty = snap.balances[balanceKey{holder: holder, t: t}]
		return nil
	})
	return qty, err
}

func (s *Store) AddBalance(ctx context.Context, holder domain.Identity, t domain.TicketType, delta int64) error {
	return s.write(ctx, func(snap *snapshot) error {
		key := balanceKey{holder: holder, t: t}
		next := snap.balances[key] + delta
		if next < 0 {
			return domain.ErrInsufficientBalance
		}
		if next == 0 {
			delete(snap.balances, key)
			return nil
		}
		snap.balances[key] = next
		return nil
	})
}

// SumBalances totals every holder's quantity of t.
func (s *Store) SumBalances(ctx context.Context, t domain.TicketType) (int64, error) {
	var total int64
	err := s.read(ctx, func(snap *snapshot) error {
		for key, qty := range snap.balances {
			if key.t == t {
				total += qty
			}
		}
		return nil
	})
	return total, err
}

func (s *Store) GetAccountBalance(ctx context.Context, holder domain.Identity) (domain.Amount, error) {
	var balance domain.Amount
	err := s.read(ctx, func(snap *snapshot) error {
		balance = snap.accounts[holder]
		return nil
	})
	return balance, err
}

func (s *Store) AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error {
	return s.write(ctx, func(snap *snapshot) error {
		next, ok := snap.accounts[holder].Add(delta)
		if !ok {
			return domain.ErrInvalidAmount
		}
		if next < 0 {
			return domain.ErrInsufficientFunds
		}
		snap.accounts[holder] = next
		return nil
	})
}

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase) error {
	return s.write(ctx, func(snap *snapshot) error {
		snap.purchases = append(snap.purchases, p)
		return nil
	})
}

func (s *Store) ListPurchases(ctx context.Context, holder domain.Identity) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := s.read(ctx, func(snap *snapshot) error {
		for _, p := range snap.purchases {
			if p.Buyer == holder {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	return s.write(ctx, func(snap *snapshot) error {
		snap.withdrawals = append(snap.withdrawals, w)
		return nil
	})
}

func (s *Store) ListWithdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	err := s.read(ctx, func(snap *snapshot) error {
		out = append(out, snap.withdrawals...)
		return nil
	})
	return out, err
}
