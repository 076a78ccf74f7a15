//go:build js && wasm

// Command steepshot-mock-worker serves the mock Steepshot API from a
// Cloudflare Worker, for trying the client without a real backend.
package main

import (
	"github.com/syumai/workers"

	"github.com/dvcrn/steepshot-go/internal/env"
	"github.com/dvcrn/steepshot-go/internal/logger"
	"github.com/dvcrn/steepshot-go/internal/mockapi"
)

func main() {
	prefix := env.GetOrDefault("STEEPSHOT_MOCK_PREFIX", mockapi.DefaultPrefix)
	srv := mockapi.NewServer(
		mockapi.WithPrefix(prefix),
		mockapi.WithLogger(logger.Component("mockapi")),
	)
	logger.Get().Info().Str("prefix", srv.Prefix()).Msg("Serving mock API")
	workers.Serve(srv)
}
