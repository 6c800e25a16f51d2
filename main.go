// main is the entry point for the chatstats CLI.
package main

import (
	"github.com/huangsam/chatstats/cmd"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/internal/iocache"
	"github.com/joho/godotenv"
)

func main() {
	// CHATSTATS_* settings may also come from a .env file in the working directory
	if err := godotenv.Load(); err != nil {
		contract.Logger().Debug("No .env file found, using environment variables")
	}

	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
}
