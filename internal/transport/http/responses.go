package http

import (
	"time"

	"github.com/cimillas/ticket-sale/internal/app"
	"github.com/cimillas/ticket-sale/internal/domain"
)

// Amounts are returned twice: as integer minor units and formatted in major
// units with the configured number of decimals.

type statusResponse struct {
	Authority       string `json:"authority"`
	Paused          bool   `json:"paused"`
	BaseURI         string `json:"base_uri"`
	Treasury        int64  `json:"treasury"`
	TreasuryDisplay string `json:"treasury_display"`
}

type tierResponse struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	UnitPrice        int64  `json:"unit_price"`
	UnitPriceDisplay string `json:"unit_price_display"`
	MaxSupply        int64  `json:"max_supply"`
	Minted           int64  `json:"minted"`
	Available        int64  `json:"available"`
	URI              string `json:"uri"`
}

type lineResponse struct {
	TicketType int    `json:"ticket_type"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

type purchaseResponse struct {
	ID          string         `json:"id"`
	Buyer       string         `json:"buyer"`
	Lines       []lineResponse `json:"lines"`
	Paid        int64          `json:"paid"`
	PaidDisplay string         `json:"paid_display"`
	CreatedAt   time.Time      `json:"created_at"`
}

type withdrawalResponse struct {
	ID            string    `json:"id"`
	Recipient     string    `json:"recipient"`
	Amount        int64     `json:"amount"`
	AmountDisplay string    `json:"amount_display"`
	CreatedAt     time.Time `json:"created_at"`
}

type accountResponse struct {
	Holder         string `json:"holder"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

func toStatusResponse(s app.Status, decimals int32) statusResponse {
	return statusResponse{
		Authority:       s.Authority.String(),
		Paused:          s.Paused,
		BaseURI:         s.BaseURI,
		Treasury:        int64(s.Treasury),
		TreasuryDisplay: s.Treasury.Format(decimals),
	}
}

func toTierResponse(v app.TierView, decimals int32) tierResponse {
	return tierResponse{
		ID:               v.Type.ID(),
		Name:             v.Type.String(),
		UnitPrice:        int64(v.UnitPrice),
		UnitPriceDisplay: v.UnitPrice.Format(decimals),
		MaxSupply:        v.MaxSupply,
		Minted:           v.Minted,
		Available:        v.Available,
		URI:              v.URI,
	}
}

func toPurchaseResponse(p domain.Purchase, decimals int32) purchaseResponse {
	lines := make([]lineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, lineResponse{
			TicketType: line.Type.ID(),
			Name:       line.Type.String(),
			Quantity:   line.Quantity,
		})
	}
	return purchaseResponse{
		ID:          p.ID,
		Buyer:       p.Buyer.String(),
		Lines:       lines,
		Paid:        int64(p.Paid),
		PaidDisplay: p.Paid.Format(decimals),
		CreatedAt:   p.CreatedAt,
	}
}

func toWithdrawalResponse(w domain.Withdrawal, decimals int32) withdrawalResponse {
	return withdrawalResponse{
		ID:            w.ID,
		Recipient:     w.Recipient.String(),
		Amount:        int64(w.Amount),
		AmountDisplay: w.Amount.Format(decimals),
		CreatedAt:     w.CreatedAt,
	}
}

func toAccountResponse(holder domain.Identity, balance domain.Amount, decimals int32) accountResponse {
	return accountResponse{
		Holder:         holder.String(),
		Balance:        int64(balance),
		BalanceDisplay: balance.Format(decimals),
	}
}
