// Package main is the entry point for the devnet auth service.
package main

import (
	"os"

	"github.com/aussiebroadwan/devnet/internal/auth/app"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = app.BuildVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
