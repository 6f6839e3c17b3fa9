package app

import (
	"context"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// AccountService manages the value accounts purchases are paid from and
// withdrawals are paid into.
type AccountService struct {
	repo AccountRepository
}

func NewAccountService(repo AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Deposit credits holder with amount and returns the new balance.
func (s *AccountService) Deposit(ctx context.Context, holder domain.Identity, amount domain.Amount) (domain.Amount, error) {
	if holder.IsZero() {
		return 0, domain.ErrInvalidIdentity
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	var balance domain.Amount
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.LockState(txCtx); err != nil {
			return err
		}
		current, err := s.repo.GetAccountBalance(txCtx, holder)
		if err != nil {
			return err
		}
		next, ok := current.Add(amount)
		if !ok {
			return domain.ErrInvalidAmount
		}
		if err := s.repo.AdjustAccount(txCtx, holder, amount); err != nil {
			return err
		}
		balance = next
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *AccountService) Balance(ctx context.Context, holder domain.Identity) (domain.Amount, error) {
	if holder.IsZero() {
		return 0, domain.ErrInvalidIdentity
	}
	return s.repo.GetAccountBalance(ctx, holder)
}
