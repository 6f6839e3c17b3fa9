package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cimillas/ticket-sale/internal/domain"
)

type BootstrapInput struct {
	Authority domain.Identity
	BaseURI   string
	Tiers     []domain.Tier
	// Decimals prices the ticket types Tiers leaves out.
	Decimals int32
	// Accounts are funded only when the sale is created by this call.
	Accounts map[domain.Identity]domain.Amount
}

// Bootstrap creates the sale on first start. An existing sale is left as
// stored so restarts never reset supply, prices or the treasury.
func Bootstrap(ctx context.Context, repo BootstrapRepository, in BootstrapInput, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if in.Authority.IsZero() {
		return fmt.Errorf("bootstrap: %w: authority required", domain.ErrInvalidIdentity)
	}

	tiers, err := completeTiers(in.Tiers, in.Decimals)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	state := domain.SaleState{
		Authority: in.Authority,
		BaseURI:   in.BaseURI,
	}

	var created bool
	err = repo.WithTx(ctx, func(txCtx context.Context) error {
		ok, err := repo.Initialize(txCtx, state, tiers)
		if err != nil {
			return err
		}
		created = ok
		if !ok {
			return nil
		}
		for holder, amount := range in.Accounts {
			if holder.IsZero() || amount <= 0 {
				continue
			}
			if err := repo.AdjustAccount(txCtx, holder, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if created {
		logger.Info("sale initialized", "authority", in.Authority, "base_uri", in.BaseURI, "tiers", len(tiers))
	} else {
		logger.Info("sale already initialized, keeping stored state")
	}
	return nil
}

// completeTiers fills in defaults for every ticket type the input leaves
// out and rejects unknown or malformed entries.
func completeTiers(in []domain.Tier, decimals int32) ([]domain.Tier, error) {
	byType := make(map[domain.TicketType]domain.Tier, len(in))
	for _, tier := range in {
		if !tier.Type.Valid() {
			return nil, domain.ErrInvalidTicketType
		}
		if tier.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidAmount
		}
		if tier.MaxSupply < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		tier.Minted = 0
		byType[tier.Type] = tier
	}

	out := make([]domain.Tier, 0, len(domain.TicketTypes()))
	for _, t := range domain.TicketTypes() {
		if tier, ok := byType[t]; ok {
			out = append(out, tier)
			continue
		}
		price, err := domain.DefaultPrice(t, decimals)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Tier{Type: t, UnitPrice: price, MaxSupply: domain.DefaultMaxSupply})
	}
	return out, nil
}
