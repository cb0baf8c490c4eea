package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/clientintel/internal/api"
	"github.com/wonny/clientintel/internal/api/handlers"
	"github.com/wonny/clientintel/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API and the tool-call websocket.

Endpoints:
  GET /health                                  - Health check
  GET /api/tickers/search?q=                   - Ticker search
  GET /api/stocks/{ticker}/performance         - Quote with derived metrics
  GET /api/news?company=&ticker=&mode=         - Single news mode
  GET /api/briefings/{ticker}?company=&format= - Generate a briefing
  GET /api/briefings                           - Archived briefings
  GET /api/briefings/id/{id}                   - One archived briefing
  GET /ws/tools                                - Tool-call websocket

Example:
  go run ./cmd/intel api
  go run ./cmd/intel api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT or 8080)")
}

// handlerServices adapts the wired graph to the handler interfaces.
// A nil archive must stay a nil interface.
func handlerServices(s *services) handlers.Services {
	svc := handlers.Services{
		Tickers:   s.tickers,
		Quotes:    s.quotes,
		News:      s.news,
		Briefings: s.orch,
	}
	if s.archive != nil {
		svc.Archive = s.archive
	}
	return svc
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	s, err := buildServices(cmd.Context(), cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to wire services")
		return err
	}
	defer s.Close()

	svc := handlerServices(s)
	router := api.NewRouter(
		handlers.NewIntelHandler(svc, log),
		handlers.NewToolSocket(handlers.NewToolbox(svc), log),
		log,
	)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(os.Stderr, "Server running on http://localhost:%s (Ctrl+C to stop)\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
