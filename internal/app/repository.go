package app

import (
	"context"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// Transactor runs fn as one atomic call: every write made through the
// repository with the ctx passed to fn commits together or not at all.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// StateLocker loads the sale singleton. Inside WithTx the row stays locked
// until the transaction ends, which orders concurrent calls.
type StateLocker interface {
	LockState(ctx context.Context) (domain.SaleState, error)
	SaveState(ctx context.Context, state domain.SaleState) error
}

type SaleRepository interface {
	Transactor
	StateLocker
	GetTier(ctx context.Context, t domain.TicketType) (domain.Tier, error)
	SaveTier(ctx context.Context, tier domain.Tier) error
	GetBalance(ctx context.Context, holder domain.Identity, t domain.TicketType) (int64, error)
	AddBalance(ctx context.Context, holder domain.Identity, t domain.TicketType, delta int64) error
	GetAccountBalance(ctx context.Context, holder domain.Identity) (domain.Amount, error)
	AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error
	CreatePurchase(ctx context.Context, p domain.Purchase) error
}

type AdminRepository interface {
	Transactor
	StateLocker
	GetTier(ctx context.Context, t domain.TicketType) (domain.Tier, error)
	SaveTier(ctx context.Context, tier domain.Tier) error
	AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error
	CreateWithdrawal(ctx context.Context, w domain.Withdrawal) error
}

type QueryRepository interface {
	GetState(ctx context.Context) (domain.SaleState, error)
	GetTier(ctx context.Context, t domain.TicketType) (domain.Tier, error)
	ListTiers(ctx context.Context) ([]domain.Tier, error)
	GetBalance(ctx context.Context, holder domain.Identity, t domain.TicketType) (int64, error)
	ListPurchases(ctx context.Context, holder domain.Identity) ([]domain.Purchase, error)
	ListWithdrawals(ctx context.Context) ([]domain.Withdrawal, error)
}

type AccountRepository interface {
	Transactor
	LockState(ctx context.Context) (domain.SaleState, error)
	GetAccountBalance(ctx context.Context, holder domain.Identity) (domain.Amount, error)
	AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error
}

type BootstrapRepository interface {
	Transactor
	// Initialize stores state and tiers unless a sale already exists. It
	// reports whether anything was written.
	Initialize(ctx context.Context, state domain.SaleState, tiers []domain.Tier) (bool, error)
	AdjustAccount(ctx context.Context, holder domain.Identity, delta domain.Amount) error
}
