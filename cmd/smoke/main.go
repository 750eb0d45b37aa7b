package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/convention/internal/auth"
	"github.com/okian/convention/internal/smoke"
	"github.com/okian/convention/pkg/logger"
)

const (
	defaultDelegates = 50
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultRunTime   = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		delegates = flag.Int("delegates", defaultDelegates, "Number of delegates to register")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		token     = flag.String("token", os.Getenv("CONV_SMOKE_TOKEN"), "Admin bearer token; enables confirmation and pitch steps")
		secret    = flag.String("secret", "", "Admin JWT secret used to mint a token when -token is empty")
		issuer    = flag.String("issuer", "convention.admin", "Admin JWT issuer used with -secret")
		report    = flag.String("report", "", "Write the JSON report to this file")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	if *token == "" && *secret != "" {
		t, err := auth.Issue(auth.Config{Secret: *secret, Issuer: *issuer}, "smoke", time.Hour, time.Now(), auth.ScopeAdmin)
		if err != nil {
			os.Stderr.WriteString("failed to mint token: " + err.Error() + "\n")
			os.Exit(1)
		}
		*token = t
	}

	_, err := smoke.Run(ctx, &smoke.Config{
		BaseURL:    *baseURL,
		Delegates:  *delegates,
		Workers:    *workers,
		Timeout:    *timeout,
		AdminToken: *token,
		ReportFile: *report,
		Verbose:    *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
