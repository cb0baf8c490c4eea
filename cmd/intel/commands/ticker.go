package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/clientintel/pkg/logger"
)

// tickerCmd represents the ticker command
var tickerCmd = &cobra.Command{
	Use:   "ticker [company name]",
	Short: "Resolve a company name to a ticker",
	Long: `Searches for a company's stock symbol.

Example:
  go run ./cmd/intel ticker Microsoft
  go run ./cmd/intel ticker "Berkshire Hathaway"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTicker,
}

func init() {
	rootCmd.AddCommand(tickerCmd)
}

func runTicker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	s, err := buildServices(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.tickers.SearchTicker(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	if result.Found {
		fmt.Printf("  %-8s %s (%s, %s)\n", result.Ticker, result.Name, result.Type, result.Region)
		return nil
	}
	for _, m := range result.Suggestions {
		fmt.Printf("  %-8s %s (%s, %s)\n", m.Symbol, m.Name, m.Type, m.Region)
	}
	return nil
}
