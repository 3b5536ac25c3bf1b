package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mortgage-eligibility/internal/config"

	"github.com/robfig/cron/v3"
)

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Runner is what the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) (ReevaluationSummary, error)
}

// NewScheduler registers the re-evaluation job with a cron scheduler. A run
// that is still going when the next tick fires causes that tick to be skipped.
// The caller starts and stops the returned scheduler.
func NewScheduler(cfg config.BatchConfig, job Runner, logger *slog.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger: logger.With("component", "cron")}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}

	jobID, err := c.AddJob(cfg.ReevaluationSchedule, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "ReevaluateRejected")
		jobLogger.Info("Cron triggered: running re-evaluation job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, runErr := job.Run(ctx); runErr != nil {
			jobLogger.Error("Re-evaluation job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to schedule re-evaluation job with %q: %w", cfg.ReevaluationSchedule, err)
	}

	logger.Info("Scheduled re-evaluation job", "schedule", cfg.ReevaluationSchedule, "job_id", jobID, "timeout", timeout)
	return c, nil
}
