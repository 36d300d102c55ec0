// Package main is the single-binary entrypoint for cattime.
package main

import "github.com/cat-time-bot/cattime/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
