package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/scheduler"
	"github.com/wonny/clientintel/internal/scheduler/jobs"
	"github.com/wonny/clientintel/internal/watchlist"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled watchlist briefings",
	Long: `Starts the scheduler or runs one of its jobs.

Subcommands:
  start   - Start the scheduler daemon
  list    - List registered jobs
  run     - Run a job now and wait for it

Example:
  go run ./cmd/intel scheduler start
  go run ./cmd/intel scheduler list
  go run ./cmd/intel scheduler run watchlist_briefing`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Schedules every registered job and blocks until Ctrl+C.

Registered jobs:
- watchlist_briefing: WATCHLIST_SCHEDULE (default weekdays 07:30),
                      or the schedule in WATCHLIST_FILE
- archive_retention:  daily at 03:00 when DATABASE_URL is set`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, s, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	sched.Start()

	fmt.Fprintln(os.Stderr, "Scheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(os.Stderr, "  - %s\n", jobName)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, s, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Registered jobs:")
	for _, name := range names {
		fmt.Printf("  - %-20s %s\n", name, stats[name].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	sched, s, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := sched.RunJob(args[0])
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempt(s) (%s): %s", result.JobName, result.Attempts, result.Outcome, result.Error)
	}
	fmt.Printf("Job %s completed in %s: %s\n", result.JobName, result.Duration, result.Outcome)
	return nil
}

// initScheduler wires services and registers every job
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(cfg)

	if cfg.WatchlistFile != "" {
		if err := applyWatchlistFile(cfg.WatchlistFile, cfg, log); err != nil {
			return nil, nil, err
		}
	}

	s, err := buildServices(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(log)

	var saver jobs.BriefingSaver
	if s.archive != nil {
		saver = s.archive
	}
	var sender jobs.BriefingSender
	if s.mailer.Enabled() {
		sender = s.mailer
	}

	briefingJob := jobs.NewWatchlistBriefingJob(s.orch, saver, sender, cfg.Watchlist, cfg.WatchlistSchedule, log)
	if err := sched.AddJob(briefingJob); err != nil {
		s.Close()
		return nil, nil, err
	}

	if s.archive != nil {
		if err := sched.AddJob(jobs.NewArchiveRetentionJob(s.archive, cfg.Database.Retention, log)); err != nil {
			s.Close()
			return nil, nil, err
		}
	}

	return sched, s, nil
}

// applyWatchlistFile replaces the WATCHLIST entries with the YAML file's
func applyWatchlistFile(path string, cfg *config.Config, log *logger.Logger) error {
	f, _, err := watchlist.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %w", contracts.ErrConfigurationMissing, err)
	}

	hash, err := watchlist.Hash(f)
	if err != nil {
		return err
	}

	cfg.Watchlist = f.WatchlistEntries()
	if f.Schedule != "" {
		cfg.WatchlistSchedule = f.CronSpec()
	}

	log.WithFields(map[string]interface{}{
		"path":     path,
		"entries":  len(cfg.Watchlist),
		"schedule": cfg.WatchlistSchedule,
		"hash":     hash[:12],
	}).Info("Watchlist file loaded")
	return nil
}
