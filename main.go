package main

import (
	"os"

	"auction-engine/internal/cli"
	"auction-engine/utils"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		utils.Error("auctiond failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
