//go:build js && wasm

// Command steepshot-worker exposes read-only Steepshot listings from a
// Cloudflare Worker. The session token, when present, is read from KV.
package main

import (
	"github.com/syumai/workers"

	steepshot "github.com/dvcrn/steepshot-go"
	"github.com/dvcrn/steepshot-go/internal/env"
	"github.com/dvcrn/steepshot-go/internal/logger"
	"github.com/dvcrn/steepshot-go/internal/session"
)

func main() {
	wk := &worker{log: logger.Component("worker")}

	baseURL, _ := env.Get("STEEPSHOT_BASE_URL")
	c, err := steepshot.NewClient(baseURL,
		steepshot.WithLogger(logger.Component("client")),
		steepshot.WithUserAgent(env.GetOrDefault("STEEPSHOT_USER_AGENT", "steepshot-worker")),
	)
	if err != nil {
		wk.log.Error().Err(err).Msg("Failed to create client")
	} else {
		wk.client = c
	}

	kv, err := session.NewKVStore()
	if err != nil {
		wk.log.Warn().Err(err).Msg("KV namespace unavailable; requests will be anonymous")
	} else {
		wk.store = kv
	}

	workers.Serve(wk.routes())
}
