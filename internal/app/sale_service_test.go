package app

import (
	"context"
	"sync"
	"testing"

	"github.com/cimillas/ticket-sale/internal/clock"
	"github.com/cimillas/ticket-sale/internal/domain"
)

func TestSaleService_Mint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("single regular ticket", func(t *testing.T) {
		s := newTestSale(t)

		p, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.Regular, Quantity: 1, Paid: 5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID == "" || p.Buyer != alice || p.Paid != 5 {
			t.Fatalf("unexpected purchase %+v", p)
		}
		if !p.CreatedAt.Equal(testNow) {
			t.Fatalf("expected created_at %v, got %v", testNow, p.CreatedAt)
		}

		available, _ := s.query.AvailableSupply(ctx, domain.Regular)
		if available != 499 {
			t.Fatalf("expected 499 available, got %d", available)
		}
		balance, _ := s.query.BalanceOf(ctx, alice, domain.Regular)
		if balance != 1 {
			t.Fatalf("expected balance 1, got %d", balance)
		}
		funds, _ := s.account.Balance(ctx, alice)
		if funds != 995 {
			t.Fatalf("expected funds 995, got %d", funds)
		}
		status, _ := s.query.Status(ctx)
		if status.Treasury != 5 {
			t.Fatalf("expected treasury 5, got %d", status.Treasury)
		}
		s.assertSupplyConsistent(t)
	})

	t.Run("underpayment changes nothing", func(t *testing.T) {
		s := newTestSale(t)
		before := s.snapshot(t)

		_, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.VIP, Quantity: 1, Paid: 10})
		if err != domain.ErrInsufficientPayment {
			t.Fatalf("expected ErrInsufficientPayment, got %v", err)
		}
		s.assertUnchanged(t, before)
	})

	t.Run("lowered cap sells out", func(t *testing.T) {
		s := newTestSale(t)
		if _, err := s.admin.SetMaxSupply(ctx, testAuthority, domain.VIP, 9); err != nil {
			t.Fatalf("set max supply: %v", err)
		}
		before := s.snapshot(t)

		_, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.VIP, Quantity: 10, Paid: 150})
		if err != domain.ErrSoldOut {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
		minted, _ := s.query.Minted(ctx, domain.VIP)
		if minted != 0 {
			t.Fatalf("expected minted 0, got %d", minted)
		}
		s.assertUnchanged(t, before)
	})

	t.Run("purchase limit wins over payment and supply", func(t *testing.T) {
		s := newTestSale(t)
		_, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.Regular, Quantity: 11, Paid: 55})
		if err != domain.ErrExceedsPurchaseLimit {
			t.Fatalf("expected ErrExceedsPurchaseLimit, got %v", err)
		}
	})

	t.Run("excess payment is kept by the treasury", func(t *testing.T) {
		s := newTestSale(t)
		if _, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.Regular, Quantity: 2, Paid: 50}); err != nil {
			t.Fatalf("mint: %v", err)
		}
		status, _ := s.query.Status(ctx)
		if status.Treasury != 50 {
			t.Fatalf("expected treasury 50, got %d", status.Treasury)
		}
	})

	t.Run("free tier needs no funds", func(t *testing.T) {
		s := newTestSale(t)
		if _, err := s.admin.SetTokenPrice(ctx, testAuthority, domain.Premium, 0); err != nil {
			t.Fatalf("set price: %v", err)
		}
		if _, err := s.sales.Mint(ctx, MintInput{Caller: "carol", Type: domain.Premium, Quantity: 3}); err != nil {
			t.Fatalf("expected free mint to succeed, got %v", err)
		}
	})

	t.Run("payment above funds", func(t *testing.T) {
		s := newTestSale(t)
		before := s.snapshot(t)
		_, err := s.sales.Mint(ctx, MintInput{Caller: "carol", Type: domain.Regular, Quantity: 1, Paid: 5})
		if err != domain.ErrInsufficientFunds {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
		s.assertUnchanged(t, before)
	})

	t.Run("sold out after exact supply", func(t *testing.T) {
		s := newTestSale(t)
		if _, err := s.admin.SetMaxSupply(ctx, testAuthority, domain.Regular, 3); err != nil {
			t.Fatalf("set max supply: %v", err)
		}
		if _, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.Regular, Quantity: 3, Paid: 15}); err != nil {
			t.Fatalf("mint: %v", err)
		}
		_, err := s.sales.Mint(ctx, MintInput{Caller: bob, Type: domain.Regular, Quantity: 1, Paid: 5})
		if err != domain.ErrSoldOut {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
	})
}

func TestSaleService_Mint_ValidationOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name  string
		pause bool
		in    MintInput
		want  error
	}{
		{name: "empty caller", in: MintInput{Type: domain.Regular, Quantity: 1, Paid: 5}, want: domain.ErrInvalidIdentity},
		{name: "negative payment", in: MintInput{Caller: alice, Type: domain.Regular, Quantity: 1, Paid: -1}, want: domain.ErrInvalidAmount},
		{name: "paused beats bad type", pause: true, in: MintInput{Caller: alice, Type: domain.Unknown, Quantity: 0}, want: domain.ErrHalted},
		{name: "paused beats valid call", pause: true, in: MintInput{Caller: alice, Type: domain.Regular, Quantity: 1, Paid: 5}, want: domain.ErrHalted},
		{name: "type beats quantity", in: MintInput{Caller: alice, Type: domain.Unknown, Quantity: 0}, want: domain.ErrInvalidTicketType},
		{name: "zero quantity without payment", in: MintInput{Caller: alice, Type: domain.Regular, Quantity: 0}, want: domain.ErrInvalidQuantity},
		{name: "limit beats payment", in: MintInput{Caller: alice, Type: domain.Regular, Quantity: 11}, want: domain.ErrExceedsPurchaseLimit},
		{name: "payment beats supply", in: MintInput{Caller: alice, Type: domain.Regular, Quantity: 1, Paid: 4}, want: domain.ErrInsufficientPayment},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestSale(t)
			if tt.pause {
				if err := s.admin.Pause(ctx, testAuthority); err != nil {
					t.Fatalf("pause: %v", err)
				}
			}
			before := s.snapshot(t)
			if _, err := s.sales.Mint(ctx, tt.in); err != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			s.assertUnchanged(t, before)
		})
	}
}

func TestSaleService_MintBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("regular and premium", func(t *testing.T) {
		s := newTestSale(t)
		p, err := s.sales.MintBatch(ctx, MintBatchInput{
			Caller:     alice,
			Types:      []domain.TicketType{domain.Regular, domain.Premium},
			Quantities: []int64{1, 1},
			Paid:       15,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(p.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %+v", p.Lines)
		}
		for _, tt := range []domain.TicketType{domain.Regular, domain.Premium} {
			qty, _ := s.query.BalanceOf(ctx, alice, tt)
			if qty != 1 {
				t.Fatalf("expected balance 1 of %s, got %d", tt, qty)
			}
		}
		s.assertSupplyConsistent(t)
	})

	t.Run("duplicate types count against supply together", func(t *testing.T) {
		s := newTestSale(t)
		if _, err := s.admin.SetMaxSupply(ctx, testAuthority, domain.VIP, 12); err != nil {
			t.Fatalf("set max supply: %v", err)
		}
		before := s.snapshot(t)
		_, err := s.sales.MintBatch(ctx, MintBatchInput{
			Caller:     alice,
			Types:      []domain.TicketType{domain.VIP, domain.VIP},
			Quantities: []int64{10, 5},
			Paid:       225,
		})
		if err != domain.ErrSoldOut {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
		s.assertUnchanged(t, before)

		if _, err := s.sales.MintBatch(ctx, MintBatchInput{
			Caller:     alice,
			Types:      []domain.TicketType{domain.VIP, domain.VIP},
			Quantities: []int64{10, 2},
			Paid:       180,
		}); err != nil {
			t.Fatalf("expected exact fit to succeed, got %v", err)
		}
		minted, _ := s.query.Minted(ctx, domain.VIP)
		if minted != 12 {
			t.Fatalf("expected minted 12, got %d", minted)
		}
		s.assertSupplyConsistent(t)
	})

	errorCases := []struct {
		name   string
		pause  bool
		vipCap int64
		in     MintBatchInput
		want   error
	}{
		{
			name: "empty batch",
			in:   MintBatchInput{Caller: alice},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "length mismatch",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular}, Quantities: []int64{1, 1}, Paid: 10},
			want: domain.ErrInvalidQuantity,
		},
		{
			name:  "paused beats empty batch",
			pause: true,
			in:    MintBatchInput{Caller: alice},
			want:  domain.ErrHalted,
		},
		{
			name: "second line bad type",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.Unknown}, Quantities: []int64{1, 1}, Paid: 100},
			want: domain.ErrInvalidTicketType,
		},
		{
			name: "line over limit",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.VIP}, Quantities: []int64{1, 11}, Paid: 1000},
			want: domain.ErrExceedsPurchaseLimit,
		},
		{
			name: "aggregate underpayment",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.Premium}, Quantities: []int64{1, 1}, Paid: 14},
			want: domain.ErrInsufficientPayment,
		},
		{
			name: "zero quantity in later line",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.Premium, domain.VIP}, Quantities: []int64{1, 2, 0}, Paid: 100},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "bad line beats underpayment",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.VIP}, Quantities: []int64{1, 0}, Paid: 0},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "over limit beats underpayment",
			in:   MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.VIP}, Quantities: []int64{1, 11}, Paid: 0},
			want: domain.ErrExceedsPurchaseLimit,
		},
		{
			name:  "paused with valid lines",
			pause: true,
			in:    MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.Regular, domain.VIP}, Quantities: []int64{1, 1}, Paid: 20},
			want:  domain.ErrHalted,
		},
		{
			name:   "single line above lowered cap",
			vipCap: 9,
			in:     MintBatchInput{Caller: alice, Types: []domain.TicketType{domain.VIP}, Quantities: []int64{10}, Paid: 150},
			want:   domain.ErrSoldOut,
		},
	}
	for _, tt := range errorCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSale(t)
			if tt.pause {
				if err := s.admin.Pause(ctx, testAuthority); err != nil {
					t.Fatalf("pause: %v", err)
				}
			}
			if tt.vipCap > 0 {
				if _, err := s.admin.SetMaxSupply(ctx, testAuthority, domain.VIP, tt.vipCap); err != nil {
					t.Fatalf("set max supply: %v", err)
				}
			}
			before := s.snapshot(t)
			if _, err := s.sales.MintBatch(ctx, tt.in); err != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			s.assertUnchanged(t, before)
		})
	}
}

func TestSaleService_FailedCommitRollsBack(t *testing.T) {
	t.Parallel()

	s := newTestSale(t)
	before := s.snapshot(t)
	failing := NewSaleService(failingPurchaseStore{s.store}, clock.NewFixed(testNow), WithSaleLogger(quietLogger()))

	_, err := failing.Mint(context.Background(), MintInput{Caller: alice, Type: domain.Regular, Quantity: 2, Paid: 10})
	if err != errInjected {
		t.Fatalf("expected injected error, got %v", err)
	}
	s.assertUnchanged(t, before)
}

func TestSaleService_ConcurrentMintsNeverOversell(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newTestSale(t)
	if _, err := s.admin.SetMaxSupply(ctx, testAuthority, domain.Regular, 25); err != nil {
		t.Fatalf("set max supply: %v", err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, sold int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.Regular, Quantity: 2, Paid: 10})
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				ok++
			case domain.ErrSoldOut:
				sold++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 12 || sold != 8 {
		t.Fatalf("expected 12 successes and 8 sold out, got %d and %d", ok, sold)
	}
	minted, _ := s.query.Minted(ctx, domain.Regular)
	if minted != 24 {
		t.Fatalf("expected minted 24, got %d", minted)
	}
	s.assertSupplyConsistent(t)
}

func TestSaleService_Transfer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newTestSale(t)
	if _, err := s.sales.Mint(ctx, MintInput{Caller: alice, Type: domain.VIP, Quantity: 3, Paid: 45}); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := s.sales.Transfer(ctx, TransferInput{From: alice, To: bob, Type: domain.VIP, Quantity: 2}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceQty, _ := s.query.BalanceOf(ctx, alice, domain.VIP)
	bobQty, _ := s.query.BalanceOf(ctx, bob, domain.VIP)
	if aliceQty != 1 || bobQty != 2 {
		t.Fatalf("expected 1/2, got %d/%d", aliceQty, bobQty)
	}
	s.assertSupplyConsistent(t)

	if err := s.sales.Transfer(ctx, TransferInput{From: alice, To: alice, Type: domain.VIP, Quantity: 1}); err != nil {
		t.Fatalf("expected self transfer to succeed, got %v", err)
	}

	tests := []struct {
		name string
		in   TransferInput
		want error
	}{
		{name: "too many", in: TransferInput{From: alice, To: bob, Type: domain.VIP, Quantity: 2}, want: domain.ErrInsufficientBalance},
		{name: "self transfer over balance", in: TransferInput{From: alice, To: alice, Type: domain.VIP, Quantity: 2}, want: domain.ErrInsufficientBalance},
		{name: "zero", in: TransferInput{From: alice, To: bob, Type: domain.VIP}, want: domain.ErrInvalidQuantity},
		{name: "bad type", in: TransferInput{From: alice, To: bob, Type: domain.Unknown, Quantity: 1}, want: domain.ErrInvalidTicketType},
		{name: "no recipient", in: TransferInput{From: alice, Type: domain.VIP, Quantity: 1}, want: domain.ErrInvalidIdentity},
	}
	for _, tt := range tests {
		before := s.snapshot(t)
		if err := s.sales.Transfer(ctx, tt.in); err != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		s.assertUnchanged(t, before)
	}

	if err := s.admin.Pause(ctx, testAuthority); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.sales.Transfer(ctx, TransferInput{From: bob, To: alice, Type: domain.VIP, Quantity: 1}); err != domain.ErrHalted {
		t.Fatalf("expected ErrHalted while paused, got %v", err)
	}
}
