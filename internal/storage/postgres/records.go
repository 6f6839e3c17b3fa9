package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/ticket-sale/internal/domain"
)

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase) error {
	const purchaseStmt = `
INSERT INTO purchases (id, buyer, paid, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := s.exec(ctx, purchaseStmt, p.ID, string(p.Buyer), int64(p.Paid), p.CreatedAt); err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}

	const lineStmt = `
INSERT INTO purchase_lines (purchase_id, position, ticket_type, quantity)
VALUES ($1, $2, $3, $4)`
	for i, line := range p.Lines {
		if _, err := s.exec(ctx, lineStmt, p.ID, i, int16(line.Type), line.Quantity); err != nil {
			return fmt.Errorf("create purchase line: %w", err)
		}
	}
	return nil
}

func (s *Store) ListPurchases(ctx context.Context, holder domain.Identity) ([]domain.Purchase, error) {
	const query = `
SELECT p.id, p.buyer, p.paid, p.created_at, l.ticket_type, l.quantity
FROM purchases p
JOIN purchase_lines l ON l.purchase_id = p.id
WHERE p.buyer = $1
ORDER BY p.created_at ASC, p.id ASC, l.position ASC`
	rows, err := s.query(ctx, query, string(holder))
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		var (
			id, buyer string
			paid, qty int64
			createdAt time.Time
			t         int16
		)
		if err := rows.Scan(&id, &buyer, &paid, &createdAt, &t, &qty); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		if n := len(purchases); n == 0 || purchases[n-1].ID != id {
			purchases = append(purchases, domain.Purchase{
				ID:        id,
				Buyer:     domain.Identity(buyer),
				Paid:      domain.Amount(paid),
				CreatedAt: createdAt,
			})
		}
		last := &purchases[len(purchases)-1]
		last.Lines = append(last.Lines, domain.PurchaseLine{Type: domain.TicketType(t), Quantity: qty})
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate purchases: %w", rows.Err())
	}
	return purchases, nil
}

func (s *Store) CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error {
	const stmt = `
INSERT INTO withdrawals (id, recipient, amount, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := s.exec(ctx, stmt, w.ID, string(w.Recipient), int64(w.Amount), w.CreatedAt); err != nil {
		return fmt.Errorf("create withdrawal: %w", err)
	}
	return nil
}

func (s *Store) ListWithdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	const query = `
SELECT id, recipient, amount, created_at
FROM withdrawals
ORDER BY created_at ASC, id ASC`
	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.Withdrawal
	for rows.Next() {
		var (
			w         domain.Withdrawal
			recipient string
			amount    int64
		)
		if err := rows.Scan(&w.ID, &recipient, &amount, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		w.Recipient = domain.Identity(recipient)
		w.Amount = domain.Amount(amount)
		out = append(out, w)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate withdrawals: %w", rows.Err())
	}
	return out, nil
}
