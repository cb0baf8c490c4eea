package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/clientintel/internal/briefing"
	"github.com/wonny/clientintel/pkg/logger"
)

// briefCmd represents the brief command
var briefCmd = &cobra.Command{
	Use:   "brief [ticker]",
	Short: "Generate one company briefing",
	Long: `Generates a briefing and prints it to stdout. Logs go to stderr.

The quote is required; news and narrative degrade gracefully.

Example:
  go run ./cmd/intel brief MSFT --company Microsoft
  go run ./cmd/intel brief AAPL --company Apple --format json --save --email`,
	Args: cobra.ExactArgs(1),
	RunE: runBrief,
}

var (
	briefCompany string
	briefFormat  string
	briefSave    bool
	briefEmail   bool
)

func init() {
	rootCmd.AddCommand(briefCmd)

	briefCmd.Flags().StringVar(&briefCompany, "company", "", "company name (defaults to the ticker)")
	briefCmd.Flags().StringVar(&briefFormat, "format", "markdown", "output format (markdown|json)")
	briefCmd.Flags().BoolVar(&briefSave, "save", false, "store the briefing in the archive")
	briefCmd.Flags().BoolVar(&briefEmail, "email", false, "email the briefing via SMTP")
}

func runBrief(cmd *cobra.Command, args []string) error {
	if briefFormat != "markdown" && briefFormat != "json" {
		return fmt.Errorf("--format must be markdown or json, got %q", briefFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx := cmd.Context()
	s, err := buildServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := s.orch.GenerateBriefing(ctx, briefCompany, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	if briefSave {
		if s.archive == nil {
			log.Warn("--save ignored: DATABASE_URL is not set")
		} else if err := s.archive.Save(ctx, b); err != nil {
			log.WithError(err).Warn("Failed to archive briefing")
		}
	}

	if briefEmail {
		if !s.mailer.Enabled() {
			log.Warn("--email ignored: SMTP is not configured")
		} else if err := s.mailer.Send(b); err != nil {
			log.WithError(err).Warn("Failed to email briefing")
		}
	}

	if briefFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	fmt.Println(briefing.RenderMarkdown(b))
	return nil
}
