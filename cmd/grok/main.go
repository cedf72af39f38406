// Command grok is a small command-line client for the xAI Grok API.
//
// # Configuration
//
// Settings come from a YAML file (--config) or the environment. A .env file
// in the working directory is loaded first when present.
//
// Environment variables:
//
//	XAI_API_KEY   - API key (required)
//	XAI_ENDPOINT  - service URL (default: "https://api.x.ai")
//	XAI_MODEL     - default chat model (default: "grok-code-fast-1")
//	XAI_TIMEOUT   - per-call timeout (default: "60s")
//
// # Shared rate limiting
//
// Processes started with the same --redis URL and --tpm budget share one
// adaptive tokens-per-minute limit through a replicated map.
//
// # Example
//
//	grok chat "Explain gRPC deadlines"
//	grok stream --model grok-4 "Write a haiku about Go"
//	grok models --kind embedding
//	grok --redis localhost:6379 --tpm 60000 chat "Hello"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"goa.design/clue/log"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(os.Stderr))

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(ctx, err)
		cancel()
		os.Exit(1)
	}
}
