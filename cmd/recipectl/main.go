// Command recipectl drives the recipe API from the terminal using the same
// request builder as the web frontend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/recipe-manager/backend/internal/client"
	"github.com/pageza/recipe-manager/backend/internal/logger"
)

const usage = `usage: recipectl [-server URL] [-timeout D] [-v] <command> [flags]

commands:
  generate -ingredients "chicken, rice" [-save]
  create   -name N -ingredients "a, b" -instructions TEXT [-prep MIN] [-image FILE]
  update   -id ID [-name N] [-ingredients "a, b"] [-instructions TEXT] [-prep MIN] [-image FILE]
  get      -id ID
  list     [-q QUERY]
  delete   -id ID
`

func main() {
	global := flag.NewFlagSet("recipectl", flag.ExitOnError)
	server := global.String("server", envOr("RECIPE_API_URL", "http://localhost:8080"), "API base URL")
	timeout := global.Duration("timeout", client.DefaultTimeout, "Request timeout")
	verbose := global.Bool("v", false, "Log requests")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		API: client.New(*server, *timeout, log),
		Out: os.Stdout,
	}
	if err := cli.Run(ctx, global.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Debug("Command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
