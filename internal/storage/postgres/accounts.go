package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *Store) GetAccountBalance(ctx context.Context, holder domain.Identity) (domain.Amount, error) {
	const query = `SELECT balance FROM accounts WHERE holder = $1`
	var balance int64
	err := s.queryRow(ctx, query, string(holder)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get account: %w", err)
	}
	return domain.Amount(balance), nil
}

func (s *Store) AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error {
	const stmt = `
INSERT INTO accounts (holder, balance)
VALUES ($1, $2)
ON CONFLICT (holder) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`
	if _, err := s.exec(ctx, stmt, string(holder), int64(delta)); err != nil {
		return constraintErr(err, "adjust account", domain.ErrInsufficientFunds, nil)
	}
	return nil
}
