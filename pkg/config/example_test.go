package config_test

import (
	"fmt"

	"github.com/wonny/clientintel/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	if err := cfg.RequireProviders(); err != nil {
		fmt.Printf("Provider keys missing: %v\n", err)
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Provider timeout: %s\n", cfg.ProviderTimeout)
	fmt.Printf("Narrative model: %s\n", cfg.Gemini.Model)
}
