// Command admin-token prints a bearer token for the admin API, signed with
// the configured CONV_ADMIN_JWT_SECRET.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/convention/internal/auth"
	"github.com/okian/convention/internal/config"
)

func main() {
	subject := flag.String("sub", "admin", "Token subject")
	ttl := flag.Duration("ttl", 0, "Token lifetime; defaults to admin_token_ttl")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *ttl <= 0 {
		*ttl = cfg.AdminTokenTTL
	}

	token, err := auth.Issue(auth.Config{Secret: cfg.AdminJWTSecret, Issuer: cfg.AdminJWTIssuer}, *subject, *ttl, time.Now(), auth.ScopeAdmin)
	if err != nil {
		os.Stderr.WriteString("failed to issue token: " + err.Error() + "\n")
		os.Exit(1)
	}
	os.Stdout.WriteString(token + "\n")
}
