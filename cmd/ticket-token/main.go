// Command ticket-token issues a signed bearer token for a caller identity,
// for local use against the API.
//
//	ticket-token --subject alice
//	curl -H "Authorization: Bearer $(ticket-token --subject admin)" ...
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cimillas/ticket-sale/internal/auth"
	"github.com/cimillas/ticket-sale/internal/config"
	"github.com/cimillas/ticket-sale/internal/domain"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("ticket-token", pflag.ExitOnError)
	subject := fs.StringP("subject", "s", "", "caller identity to embed in the token (required)")
	secret := fs.String("secret", "", "signing secret (defaults to JWT_SECRET)")
	issuer := fs.String("issuer", "", "token issuer")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	_ = fs.Parse(os.Args[1:])

	if _, err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if *secret == "" {
		*secret = os.Getenv("JWT_SECRET")
	}

	id, err := domain.NewIdentity(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "--subject is required")
		fs.Usage()
		os.Exit(2)
	}

	tokens, err := auth.New(*secret, auth.WithIssuer(*issuer), auth.WithTTL(*ttl))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v (set --secret or JWT_SECRET)\n", err)
		os.Exit(1)
	}
	token, err := tokens.Issue(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
