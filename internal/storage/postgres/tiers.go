package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (s *Store) GetTier(ctx context.Context, t domain.TicketType) (domain.Tier, error) {
	if !t.Valid() {
		return domain.Tier{}, domain.ErrInvalidTicketType
	}
	const query = `SELECT unit_price, max_supply, minted FROM tiers WHERE ticket_type = $1`
	var price int64
	tier := domain.Tier{Type: t}
	err := s.queryRow(ctx, query, int16(t)).Scan(&price, &tier.MaxSupply, &tier.Minted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tier{}, domain.ErrNotInitialized
		}
		return domain.Tier{}, fmt.Errorf("get tier: %w", err)
	}
	tier.UnitPrice = domain.Amount(price)
	return tier, nil
}

func (s *Store) ListTiers(ctx context.Context) ([]domain.Tier, error) {
	const query = `
SELECT ticket_type, unit_price, max_supply, minted
FROM tiers
ORDER BY ticket_type ASC`
	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.Tier
	for rows.Next() {
		var (
			tier  domain.Tier
			t     int16
			price int64
		)
		if err := rows.Scan(&t, &price, &tier.MaxSupply, &tier.Minted); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tier.Type = domain.TicketType(t)
		tier.UnitPrice = domain.Amount(price)
		tiers = append(tiers, tier)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tiers: %w", rows.Err())
	}
	if len(tiers) == 0 {
		return nil, domain.ErrNotInitialized
	}
	return tiers, nil
}

func (s *Store) SaveTier(ctx context.Context, tier domain.Tier) error {
	const stmt = `
UPDATE tiers
SET unit_price = $2, max_supply = $3, minted = $4
WHERE ticket_type = $1`
	tag, err := s.exec(ctx, stmt, int16(tier.Type), int64(tier.UnitPrice), tier.MaxSupply, tier.Minted)
	if err != nil {
		return constraintErr(err, "save tier", domain.ErrInvalidQuantity, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTicketType
	}
	return nil
}
