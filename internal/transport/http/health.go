package http

import (
	"context"
	"log/slog"
	stdhttp "net/http"
)

// SaleProbe reports whether the sale state can be read.
type SaleProbe interface {
	Paused(ctx context.Context) (bool, error)
}

// HandleHealth reports liveness. It answers 503 while the store is
// unreachable or the sale has not been initialized.
func HandleHealth(probe SaleProbe) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if _, err := probe.Paused(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "err", err)
			writeError(w, stdhttp.StatusServiceUnavailable, codeNotInitialized, "unavailable")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
