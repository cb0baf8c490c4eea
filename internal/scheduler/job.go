package scheduler

import (
	"context"
	"fmt"
	"time"
)

// maxHistory bounds the results kept per job
const maxHistory = 100

// Job represents a scheduled job
// ⭐ SSOT: scheduled work implements this interface
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job and reports what it produced
	Run(ctx context.Context) (Outcome, error)

	// Schedule returns the cron expression, seconds first
	// Examples: "0 0 7 * * 1-5" (weekdays at 07:00), "@daily"
	Schedule() string
}

// Outcome counts the items one run handled: briefings produced, rows pruned
type Outcome struct {
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Detail    string `json:"detail,omitempty"`
}

func (o Outcome) String() string {
	if o.Detail != "" {
		return fmt.Sprintf("%d processed, %d failed (%s)", o.Processed, o.Failed, o.Detail)
	}
	return fmt.Sprintf("%d processed, %d failed", o.Processed, o.Failed)
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Outcome   Outcome       `json:"outcome"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores job execution history. Callers hold the scheduler lock.
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest N results
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}

	if n == 0 {
		return []JobResult{}
	}

	return h.Results[len(h.Results)-n:]
}

// FailureCount returns how many recorded runs failed
func (h *JobHistory) FailureCount() int {
	failed := 0
	for _, result := range h.Results {
		if !result.Success {
			failed++
		}
	}
	return failed
}

// GetSuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) GetSuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}

	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}

// TotalProcessed sums Processed over the recorded runs
func (h *JobHistory) TotalProcessed() int {
	total := 0
	for _, result := range h.Results {
		total += result.Outcome.Processed
	}
	return total
}
