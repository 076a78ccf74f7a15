//go:build !js || !wasm

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "steepshot-worker only runs on Cloudflare Workers (GOOS=js GOARCH=wasm)")
	os.Exit(1)
}
