package app

import (
	"context"
	"log/slog"

	"github.com/cimillas/ticket-sale/internal/clock"
	"github.com/cimillas/ticket-sale/internal/domain"
)

// SaleService validates and executes purchases and holder transfers.
type SaleService struct {
	repo   SaleRepository
	clock  clock.Clock
	logger *slog.Logger
}

type SaleServiceOption func(*SaleService)

// WithSaleLogger overrides the default slog logger.
func WithSaleLogger(logger *slog.Logger) SaleServiceOption {
	return func(s *SaleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSaleService(repo SaleRepository, clk clock.Clock, opts ...SaleServiceOption) *SaleService {
	svc := &SaleService{
		repo:   repo,
		clock:  clk,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type MintInput struct {
	Caller   domain.Identity
	Type     domain.TicketType
	Quantity int64
	Paid     domain.Amount
}

// MintBatchInput pairs Types[i] with Quantities[i].
type MintBatchInput struct {
	Caller     domain.Identity
	Types      []domain.TicketType
	Quantities []int64
	Paid       domain.Amount
}

// Mint buys Quantity tickets of one type. Checks run in this order: paused,
// ticket type, quantity, purchase limit, payment, supply.
func (s *SaleService) Mint(ctx context.Context, in MintInput) (domain.Purchase, error) {
	if in.Caller.IsZero() {
		return domain.Purchase{}, domain.ErrInvalidIdentity
	}
	if in.Paid.IsNegative() {
		return domain.Purchase{}, domain.ErrInvalidAmount
	}

	var result domain.Purchase
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.LockState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireRunning(); err != nil {
			return err
		}

		line := domain.PurchaseLine{Type: in.Type, Quantity: in.Quantity}
		if err := line.ValidateShape(); err != nil {
			return err
		}

		tier, err := s.repo.GetTier(txCtx, line.Type)
		if err != nil {
			return err
		}
		required, ok := tier.UnitPrice.MulQty(line.Quantity)
		if !ok || in.Paid < required {
			return domain.ErrInsufficientPayment
		}
		if line.Quantity > tier.Available() {
			return domain.ErrSoldOut
		}

		tiers := map[domain.TicketType]*domain.Tier{tier.Type: &tier}
		purchase, err := s.commit(txCtx, state, in.Caller, []domain.PurchaseLine{line}, tiers, in.Paid)
		if err != nil {
			return err
		}
		result = purchase
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logger.Debug("tickets minted",
		"purchase_id", result.ID,
		"buyer", result.Buyer,
		"ticket_type", in.Type.String(),
		"quantity", in.Quantity,
	)
	return result, nil
}

// MintBatch buys several lines at once. Lines are shape-checked in order,
// payment is checked against the aggregate total, and supply is checked per
// line with earlier lines of the same type already counted.
func (s *SaleService) MintBatch(ctx context.Context, in MintBatchInput) (domain.Purchase, error) {
	if in.Caller.IsZero() {
		return domain.Purchase{}, domain.ErrInvalidIdentity
	}
	if in.Paid.IsNegative() {
		return domain.Purchase{}, domain.ErrInvalidAmount
	}

	var result domain.Purchase
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.LockState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireRunning(); err != nil {
			return err
		}
		lines, err := domain.ZipLines(in.Types, in.Quantities)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := line.ValidateShape(); err != nil {
				return err
			}
		}

		tiers := make(map[domain.TicketType]*domain.Tier, len(lines))
		var required domain.Amount
		for _, line := range lines {
			tier, ok := tiers[line.Type]
			if !ok {
				loaded, err := s.repo.GetTier(txCtx, line.Type)
				if err != nil {
					return err
				}
				tier = &loaded
				tiers[line.Type] = tier
			}
			lineTotal, ok := tier.UnitPrice.MulQty(line.Quantity)
			if !ok {
				return domain.ErrInsufficientPayment
			}
			if required, ok = required.Add(lineTotal); !ok {
				return domain.ErrInsufficientPayment
			}
		}
		if in.Paid < required {
			return domain.ErrInsufficientPayment
		}

		pending := make(map[domain.TicketType]int64, len(tiers))
		for _, line := range lines {
			if line.Quantity > tiers[line.Type].Available()-pending[line.Type] {
				return domain.ErrSoldOut
			}
			pending[line.Type] += line.Quantity
		}

		purchase, err := s.commit(txCtx, state, in.Caller, lines, tiers, in.Paid)
		if err != nil {
			return err
		}
		result = purchase
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logger.Debug("ticket batch minted",
		"purchase_id", result.ID,
		"buyer", result.Buyer,
		"lines", len(result.Lines),
	)
	return result, nil
}

// commit applies a validated purchase: collects payment from the buyer's
// account, reserves supply, credits balances and grows the treasury.
func (s *SaleService) commit(
	ctx context.Context,
	state domain.SaleState,
	buyer domain.Identity,
	lines []domain.PurchaseLine,
	tiers map[domain.TicketType]*domain.Tier,
	paid domain.Amount,
) (domain.Purchase, error) {
	funds, err := s.repo.GetAccountBalance(ctx, buyer)
	if err != nil {
		return domain.Purchase{}, err
	}
	if funds < paid {
		return domain.Purchase{}, domain.ErrInsufficientFunds
	}
	treasury, ok := state.Treasury.Add(paid)
	if !ok {
		return domain.Purchase{}, domain.ErrInvalidAmount
	}

	for _, line := range lines {
		tiers[line.Type].Reserve(line.Quantity)
		if err := s.repo.AddBalance(ctx, buyer, line.Type, line.Quantity); err != nil {
			return domain.Purchase{}, err
		}
	}
	for _, tier := range tiers {
		if err := s.repo.SaveTier(ctx, *tier); err != nil {
			return domain.Purchase{}, err
		}
	}

	if paid > 0 {
		if err := s.repo.AdjustAccount(ctx, buyer, -paid); err != nil {
			return domain.Purchase{}, err
		}
	}
	state.Treasury = treasury
	if err := s.repo.SaveState(ctx, state); err != nil {
		return domain.Purchase{}, err
	}

	purchase := domain.Purchase{
		ID:        newID(),
		Buyer:     buyer,
		Lines:     append([]domain.PurchaseLine(nil), lines...),
		Paid:      paid,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return domain.Purchase{}, err
	}
	return purchase, nil
}

type TransferInput struct {
	From     domain.Identity
	To       domain.Identity
	Type     domain.TicketType
	Quantity int64
}

// Transfer moves tickets between holders. Minted counts are untouched, so
// the sum of balances per type stays equal to minted.
func (s *SaleService) Transfer(ctx context.Context, in TransferInput) error {
	if in.From.IsZero() || in.To.IsZero() {
		return domain.ErrInvalidIdentity
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.LockState(txCtx)
		if err != nil {
			return err
		}
		if err := state.RequireRunning(); err != nil {
			return err
		}
		if !in.Type.Valid() {
			return domain.ErrInvalidTicketType
		}
		if in.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}

		held, err := s.repo.GetBalance(txCtx, in.From, in.Type)
		if err != nil {
			return err
		}
		if held < in.Quantity {
			return domain.ErrInsufficientBalance
		}
		if in.From == in.To {
			return nil
		}

		if err := s.repo.AddBalance(txCtx, in.From, in.Type, -in.Quantity); err != nil {
			return err
		}
		return s.repo.AddBalance(txCtx, in.To, in.Type, in.Quantity)
	})
}
