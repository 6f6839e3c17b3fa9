package app

import (
	"context"

	"github.com/cimillas/ticket-sale/internal/domain"
)

// QueryService exposes the side-effect free read surface.
type QueryService struct {
	repo QueryRepository
}

func NewQueryService(repo QueryRepository) *QueryService {
	return &QueryService{repo: repo}
}

// TierView is a tier plus the values derived from it.
type TierView struct {
	domain.Tier
	Available int64
	URI       string
}

type Status struct {
	Authority domain.Identity
	Paused    bool
	BaseURI   string
	Treasury  domain.Amount
}

type HolderBalance struct {
	Type     domain.TicketType
	Quantity int64
}

func (s *QueryService) Status(ctx context.Context) (Status, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Authority: state.Authority,
		Paused:    state.Paused,
		BaseURI:   state.BaseURI,
		Treasury:  state.Treasury,
	}, nil
}

func (s *QueryService) Paused(ctx context.Context) (bool, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

func (s *QueryService) Tier(ctx context.Context, t domain.TicketType) (TierView, error) {
	if !t.Valid() {
		return TierView{}, domain.ErrInvalidTicketType
	}
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return TierView{}, err
	}
	tier, err := s.repo.GetTier(ctx, t)
	if err != nil {
		return TierView{}, err
	}
	return viewOf(state, tier), nil
}

func (s *QueryService) Tiers(ctx context.Context) ([]TierView, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return nil, err
	}
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TierView, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, viewOf(state, tier))
	}
	return out, nil
}

func viewOf(state domain.SaleState, tier domain.Tier) TierView {
	return TierView{
		Tier:      tier,
		Available: tier.Available(),
		URI:       domain.TicketURI(state.BaseURI, tier.Type),
	}
}

func (s *QueryService) AvailableSupply(ctx context.Context, t domain.TicketType) (int64, error) {
	view, err := s.Tier(ctx, t)
	if err != nil {
		return 0, err
	}
	return view.Available, nil
}

func (s *QueryService) MaxSupply(ctx context.Context, t domain.TicketType) (int64, error) {
	view, err := s.Tier(ctx, t)
	if err != nil {
		return 0, err
	}
	return view.MaxSupply, nil
}

// Minted is the total supply issued so far for t.
func (s *QueryService) Minted(ctx context.Context, t domain.TicketType) (int64, error) {
	view, err := s.Tier(ctx, t)
	if err != nil {
		return 0, err
	}
	return view.Minted, nil
}

func (s *QueryService) PriceOf(ctx context.Context, t domain.TicketType) (domain.Amount, error) {
	view, err := s.Tier(ctx, t)
	if err != nil {
		return 0, err
	}
	return view.UnitPrice, nil
}

func (s *QueryService) URI(ctx context.Context, t domain.TicketType) (string, error) {
	state, err := s.repo.GetState(ctx)
	if err != nil {
		return "", err
	}
	return state.URI(t)
}

func (s *QueryService) BalanceOf(ctx context.Context, holder domain.Identity, t domain.TicketType) (int64, error) {
	if !t.Valid() {
		return 0, domain.ErrInvalidTicketType
	}
	if holder.IsZero() {
		return 0, domain.ErrInvalidIdentity
	}
	return s.repo.GetBalance(ctx, holder, t)
}

// BalancesOf returns the holder's quantity of every ticket type.
func (s *QueryService) BalancesOf(ctx context.Context, holder domain.Identity) ([]HolderBalance, error) {
	if holder.IsZero() {
		return nil, domain.ErrInvalidIdentity
	}
	types := domain.TicketTypes()
	out := make([]HolderBalance, 0, len(types))
	for _, t := range types {
		qty, err := s.repo.GetBalance(ctx, holder, t)
		if err != nil {
			return nil, err
		}
		out = append(out, HolderBalance{Type: t, Quantity: qty})
	}
	return out, nil
}

func (s *QueryService) Purchases(ctx context.Context, holder domain.Identity) ([]domain.Purchase, error) {
	if holder.IsZero() {
		return nil, domain.ErrInvalidIdentity
	}
	return s.repo.ListPurchases(ctx, holder)
}

func (s *QueryService) Withdrawals(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx)
}
