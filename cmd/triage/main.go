// Command triage classifies local injury photos and prints first-aid guidance
// without running the HTTP server.
package main

import (
	"os"

	"github.com/anime-shed/first-aid-triage/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Error("triage failed")
		os.Exit(1)
	}
}
