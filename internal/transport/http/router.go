package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services bundles what the router serves.
type Services struct {
	Reader   SaleReader
	Sales    Purchaser
	Admin    Administrator
	Accounts AccountManager
	Tokens   TokenVerifier
}

type RouterOptions struct {
	// Decimals formats amounts in responses.
	Decimals      int32
	FaucetEnabled bool
	CORSOrigins   []string
	Logger        *slog.Logger
}

// NewRouter wires every endpoint. Reads are public; everything that acts for
// a caller sits behind bearer authentication.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler { return RequestLogger(next, opts.Logger) })
	r.Use(middleware.Recoverer)
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	d := opts.Decimals

	r.Get("/health", HandleHealth(svc.Reader))
	r.Get("/status", HandleStatus(svc.Reader, d))
	r.Get("/tickets", HandleListTickets(svc.Reader, d))
	r.Get("/tickets/{type}", HandleGetTicket(svc.Reader, d))
	r.Get("/tickets/{type}/uri", HandleTicketURI(svc.Reader))
	r.Get("/holders/{holder}/balances", HandleHolderBalances(svc.Reader))
	r.Get("/holders/{holder}/purchases", HandleHolderPurchases(svc.Reader, d))
	r.Get("/withdrawals", HandleListWithdrawals(svc.Reader, d))

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(svc.Tokens))

		r.Post("/purchases", HandleMint(svc.Sales, d))
		r.Post("/purchases/batch", HandleMintBatch(svc.Sales, d))
		r.Post("/transfers", HandleTransfer(svc.Sales))

		r.Get("/accounts/me", HandleMyAccount(svc.Accounts, d))
		if opts.FaucetEnabled {
			r.Post("/accounts/deposit", HandleDeposit(svc.Accounts, d))
		}

		r.Route("/admin", func(r chi.Router) {
			r.Put("/tickets/{type}/max-supply", HandleSetMaxSupply(svc.Admin, d))
			r.Put("/tickets/{type}/price", HandleSetPrice(svc.Admin, d))
			r.Post("/pause", HandleSetPaused(svc.Admin, true))
			r.Post("/unpause", HandleSetPaused(svc.Admin, false))
			r.Put("/uri", HandleSetURI(svc.Admin))
			r.Post("/withdraw", HandleWithdraw(svc.Admin, d))
			r.Put("/authority", HandleTransferAuthority(svc.Admin))
		})
	})

	return CORS(opts.CORSOrigins, r)
}
