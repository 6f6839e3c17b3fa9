package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *Store) GetBalance(ctx context.Context, holder domain.Identity, t domain.TicketType) (int64, error) {
	const query = `SELECT quantity FROM balances WHERE holder = $1 AND ticket_type = $2`
	var qty int64
	err := s.queryRow(ctx, query, string(holder), int16(t)).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return qty, nil
}

func (s *Store) AddBalance(ctx context.Context, holder domain.Identity, t domain.TicketType, delta int64) error {
	const stmt = `
INSERT INTO balances (holder, ticket_type, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (holder, ticket_type) DO UPDATE SET quantity = balances.quantity + EXCLUDED.quantity`
	if _, err := s.exec(ctx, stmt, string(holder), int16(t), delta); err != nil {
		return constraintErr(err, "add balance", domain.ErrInsufficientBalance, domain.ErrInvalidTicketType)
	}
	return nil
}

// SumBalances totals every holder's quantity of t.
func (s *Store) SumBalances(ctx context.Context, t domain.TicketType) (int64, error) {
	const query = `SELECT COALESCE(SUM(quantity), 0) FROM balances WHERE ticket_type = $1`
	var total int64
	if err := s.queryRow(ctx, query, int16(t)).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total, nil
}
