package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/jackc/pgx/v5"
)

const selectState = `SELECT authority, paused, base_uri, treasury FROM sale_state WHERE id = 1`

func (s *Store) GetState(ctx context.Context) (domain.SaleState, error) {
	return s.scanState(ctx, selectState)
}

// LockState reads the singleton FOR UPDATE. Every write call takes this lock
// first, which serializes them.
func (s *Store) LockState(ctx context.Context) (domain.SaleState, error) {
	return s.scanState(ctx, selectState+` FOR UPDATE`)
}

func (s *Store) scanState(ctx context.Context, query string) (domain.SaleState, error) {
	var (
		state     domain.SaleState
		authority string
		treasury  int64
	)
	err := s.queryRow(ctx, query).Scan(&authority, &state.Paused, &state.BaseURI, &treasury)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SaleState{}, domain.ErrNotInitialized
		}
		return domain.SaleState{}, fmt.Errorf("get sale state: %w", err)
	}
	state.Authority = domain.Identity(authority)
	state.Treasury = domain.Amount(treasury)
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, state domain.SaleState) error {
	const stmt = `
UPDATE sale_state
SET authority = $1, paused = $2, base_uri = $3, treasury = $4, updated_at = NOW()
WHERE id = 1`
	tag, err := s.exec(ctx, stmt, string(state.Authority), state.Paused, state.BaseURI, int64(state.Treasury))
	if err != nil {
		return constraintErr(err, "save sale state", domain.ErrInvalidAmount, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotInitialized
	}
	return nil
}

// Initialize inserts the singleton and tier rows unless the singleton
// already exists.
func (s *Store) Initialize(ctx context.Context, state domain.SaleState, tiers []domain.Tier) (bool, error) {
	const stateStmt = `
INSERT INTO sale_state (id, authority, paused, base_uri, treasury)
VALUES (1, $1, $2, $3, 0)
ON CONFLICT (id) DO NOTHING`
	tag, err := s.exec(ctx, stateStmt, string(state.Authority), state.Paused, state.BaseURI)
	if err != nil {
		return false, fmt.Errorf("insert sale state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	const tierStmt = `
INSERT INTO tiers (ticket_type, unit_price, max_supply, minted)
VALUES ($1, $2, $3, $4)
ON CONFLICT (ticket_type) DO NOTHING`
	for _, tier := range tiers {
		if _, err := s.exec(ctx, tierStmt, int16(tier.Type), int64(tier.UnitPrice), tier.MaxSupply, tier.Minted); err != nil {
			return false, fmt.Errorf("insert tier %s: %w", tier.Type, err)
		}
	}
	return true, nil
}
