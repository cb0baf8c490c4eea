package main

import (
	"os"

	"github.com/wonny/clientintel/cmd/intel/commands"
)

// main is the entry point for the briefing CLI
// ⭐ single CLI entry point: go run ./cmd/intel [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
