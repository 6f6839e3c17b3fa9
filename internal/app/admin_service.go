package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cimillas/ticket-sale/internal/clock"
	"github.com/cimillas/ticket-sale/internal/domain"
)

// AdminService holds the authority-gated entry points. Every operation
// checks the caller against the stored authority before anything else.
type AdminService struct {
	repo   AdminRepository
	clock  clock.Clock
	logger *slog.Logger
}

type AdminServiceOption func(*AdminService)

// WithAdminLogger overrides the default slog logger.
func WithAdminLogger(logger *slog.Logger) AdminServiceOption {
	return func(s *AdminService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewAdminService(repo AdminRepository, clk clock.Clock, opts ...AdminServiceOption) *AdminService {
	svc := &AdminService{
		repo:   repo,
		clock:  clk,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// authorize opens the call's transaction, locks the sale state and checks
// the caller before fn runs.
func (s *AdminService) authorize(ctx context.Context, op string, caller domain.Identity, fn func(ctx context.Context, state domain.SaleState) error) error {
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.LockState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireAuthority(caller); err != nil {
			return err
		}
		return fn(txCtx, state)
	})
	if errors.Is(err, domain.ErrUnauthorized) {
		s.logger.Warn("rejected admin call", "op", op, "caller", caller)
	}
	return err
}

// RequireAuthority fails with ErrUnauthorized unless caller is the stored
// authority. It writes nothing.
func (s *AdminService) RequireAuthority(ctx context.Context, caller domain.Identity) error {
	return s.authorize(ctx, "require_authority", caller, func(context.Context, domain.SaleState) error {
		return nil
	})
}

func (s *AdminService) SetMaxSupply(ctx context.Context, caller domain.Identity, t domain.TicketType, maxSupply int64) (domain.Tier, error) {
	var result domain.Tier
	err := s.authorize(ctx, "set_max_supply", caller, func(txCtx context.Context, _ domain.SaleState) error {
		if !t.Valid() {
			return domain.ErrInvalidTicketType
		}
		if maxSupply < 0 {
			return domain.ErrInvalidQuantity
		}
		tier, err := s.repo.GetTier(txCtx, t)
		if err != nil {
			return err
		}
		tier.MaxSupply = maxSupply
		if err := s.repo.SaveTier(txCtx, tier); err != nil {
			return err
		}
		result = tier
		return nil
	})
	if err != nil {
		return domain.Tier{}, err
	}
	s.logger.Info("max supply updated", "ticket_type", t.String(), "max_supply", maxSupply)
	return result, nil
}

func (s *AdminService) SetTokenPrice(ctx context.Context, caller domain.Identity, t domain.TicketType, price domain.Amount) (domain.Tier, error) {
	var result domain.Tier
	err := s.authorize(ctx, "set_token_price", caller, func(txCtx context.Context, _ domain.SaleState) error {
		if !t.Valid() {
			return domain.ErrInvalidTicketType
		}
		if price.IsNegative() {
			return domain.ErrInvalidAmount
		}
		tier, err := s.repo.GetTier(txCtx, t)
		if err != nil {
			return err
		}
		tier.UnitPrice = price
		if err := s.repo.SaveTier(txCtx, tier); err != nil {
			return err
		}
		result = tier
		return nil
	})
	if err != nil {
		return domain.Tier{}, err
	}
	s.logger.Info("price updated", "ticket_type", t.String(), "price", int64(price))
	return result, nil
}

// Pause halts sales and transfers. Pausing an already paused sale succeeds
// without writing.
func (s *AdminService) Pause(ctx context.Context, caller domain.Identity) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause resumes sales. Unpausing a running sale succeeds without writing.
func (s *AdminService) Unpause(ctx context.Context, caller domain.Identity) error {
	return s.setPaused(ctx, caller, false)
}

func (s *AdminService) setPaused(ctx context.Context, caller domain.Identity, paused bool) error {
	op := "unpause"
	if paused {
		op = "pause"
	}
	changed := false
	err := s.authorize(ctx, op, caller, func(txCtx context.Context, state domain.SaleState) error {
		if state.Paused == paused {
			return nil
		}
		state.Paused = paused
		changed = true
		return s.repo.SaveState(txCtx, state)
	})
	if err != nil {
		return err
	}
	if changed {
		s.logger.Info("pause state changed", "paused", paused)
	}
	return nil
}

func (s *AdminService) SetURI(ctx context.Context, caller domain.Identity, baseURI string) error {
	err := s.authorize(ctx, "set_uri", caller, func(txCtx context.Context, state domain.SaleState) error {
		state.BaseURI = baseURI
		return s.repo.SaveState(txCtx, state)
	})
	if err != nil {
		return err
	}
	s.logger.Info("base uri updated", "base_uri", baseURI)
	return nil
}

// Withdraw pays the whole treasury into the authority's account. An empty
// treasury fails with ErrNothingToWithdraw.
func (s *AdminService) Withdraw(ctx context.Context, caller domain.Identity) (domain.Withdrawal, error) {
	var result domain.Withdrawal
	err := s.authorize(ctx, "withdraw", caller, func(txCtx context.Context, state domain.SaleState) error {
		if state.Treasury <= 0 {
			return domain.ErrNothingToWithdraw
		}
		amount := state.Treasury
		state.Treasury = 0
		if err := s.repo.SaveState(txCtx, state); err != nil {
			return err
		}
		if err := s.repo.AdjustAccount(txCtx, state.Authority, amount); err != nil {
			return err
		}

		w := domain.Withdrawal{
			ID:        newID(),
			Recipient: state.Authority,
			Amount:    amount,
			CreatedAt: s.clock.Now(),
		}
		if err := s.repo.CreateWithdrawal(txCtx, w); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}
	s.logger.Info("treasury withdrawn", "withdrawal_id", result.ID, "amount", int64(result.Amount))
	return result, nil
}

// TransferAuthority hands every administrative right to next.
func (s *AdminService) TransferAuthority(ctx context.Context, caller, next domain.Identity) error {
	err := s.authorize(ctx, "transfer_authority", caller, func(txCtx context.Context, state domain.SaleState) error {
		if next.IsZero() {
			return domain.ErrInvalidIdentity
		}
		state.Authority = next
		return s.repo.SaveState(txCtx, state)
	})
	if err != nil {
		return err
	}
	s.logger.Info("authority transferred", "from", caller, "to", next)
	return nil
}
