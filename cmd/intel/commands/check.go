package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/database"
	"github.com/wonny/clientintel/pkg/logger"
	"github.com/wonny/clientintel/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration and infrastructure",
	Long: `Reports which providers are configured and whether the optional
Redis cache, PostgreSQL archive and SMTP delivery are reachable.

Example:
  go run ./cmd/intel check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	fmt.Println("Providers")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	printStatus("Alpha Vantage", cfg.AlphaVantage.APIKey != "", "ALPHA_VANTAGE_API_KEY")
	printStatus("NewsAPI", cfg.NewsAPI.APIKey != "", "NEWS_API_KEY")
	printStatus("Google News", true, "")
	switch {
	case !cfg.Gemini.Enabled:
		fmt.Printf("  %-14s disabled (NARRATIVE_ENABLED=false)\n", "Gemini")
	default:
		printStatus("Gemini", cfg.Gemini.APIKey != "", "GEMINI_API_KEY")
	}

	fmt.Println("\nInfrastructure")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	checkRedis(ctx, cfg)
	checkDatabase(ctx, cfg)
	if cfg.SMTP.Enabled() {
		fmt.Printf("  %-14s configured (%s:%d → %s)\n", "SMTP", cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.To)
	} else {
		fmt.Printf("  %-14s disabled\n", "SMTP")
	}

	if err := cfg.RequireProviders(); err != nil {
		log.WithError(err).Warn("Briefings cannot be generated until the missing keys are set")
		return err
	}
	return nil
}

func printStatus(name string, ok bool, envVar string) {
	if ok {
		fmt.Printf("  %-14s ✅ configured\n", name)
		return
	}
	fmt.Printf("  %-14s ❌ missing %s\n", name, envVar)
}

func checkRedis(ctx context.Context, cfg *config.Config) {
	if !cfg.Redis.Enabled {
		fmt.Printf("  %-14s disabled\n", "Redis")
		return
	}
	client, err := redis.New(ctx, cfg)
	if err != nil {
		fmt.Printf("  %-14s ❌ %v\n", "Redis", err)
		return
	}
	defer client.Close()
	fmt.Printf("  %-14s ✅ %s:%s\n", "Redis", cfg.Redis.Host, cfg.Redis.Port)
}

func checkDatabase(ctx context.Context, cfg *config.Config) {
	db, err := database.New(ctx, cfg)
	if errors.Is(err, database.ErrNotConfigured) {
		fmt.Printf("  %-14s disabled\n", "PostgreSQL")
		return
	}
	if err != nil {
		fmt.Printf("  %-14s ❌ %v\n", "PostgreSQL", err)
		return
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("  %-14s ❌ %v\n", "PostgreSQL", err)
		return
	}
	fmt.Printf("  %-14s ✅ %s (conns %d/%d)\n", "PostgreSQL", health.ResponseTime, health.AcquiredConns, health.MaxConns)
}
