package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mortgage-eligibility/internal/domain/eligibility"
)

const defaultConcurrency = 4

// ReevaluationSummary reports what one run of the job did.
type ReevaluationSummary struct {
	Candidates    int
	Reevaluated   int
	NowApproved   int
	StillRejected int
	Failed        int
}

// ReevaluationJob replays rejected applications from a recent window so that
// customers whose situation improved get a fresh decision on record.
type ReevaluationJob struct {
	repo        eligibility.DecisionRepository
	service     eligibility.EligibilityService
	lookback    time.Duration
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

type JobOption func(*ReevaluationJob)

func WithConcurrency(n int) JobOption {
	return func(j *ReevaluationJob) {
		if n > 0 {
			j.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) JobOption {
	return func(j *ReevaluationJob) {
		j.now = now
	}
}

func NewReevaluationJob(
	repo eligibility.DecisionRepository,
	service eligibility.EligibilityService,
	lookback time.Duration,
	logger *slog.Logger,
	opts ...JobOption,
) *ReevaluationJob {
	if repo == nil || service == nil || logger == nil {
		panic("ReevaluationJob dependencies cannot be nil")
	}
	if lookback <= 0 {
		panic("ReevaluationJob lookback must be positive")
	}
	j := &ReevaluationJob{
		repo:        repo,
		service:     service,
		lookback:    lookback,
		concurrency: defaultConcurrency,
		now:         time.Now,
		logger:      logger.With("job", "ReevaluateRejected"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type application struct {
	name   string
	amount string
	src    *eligibility.Decision
}

// candidates keeps one application per customer and amount, in first-seen order.
func candidates(rejected []*eligibility.Decision) []application {
	seen := make(map[string]struct{}, len(rejected))
	out := make([]application, 0, len(rejected))
	for _, d := range rejected {
		if d == nil {
			continue
		}
		key := d.CustomerName + "\x00" + d.Amount.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, application{name: d.CustomerName, amount: d.Amount.String(), src: d})
	}
	return out
}

// Run re-evaluates rejected decisions. Per-application failures are counted in
// the summary; only a failure to load the candidates is returned as an error.
func (j *ReevaluationJob) Run(ctx context.Context) (ReevaluationSummary, error) {
	startTime := time.Now()
	since := j.now().Add(-j.lookback)
	j.logger.InfoContext(ctx, "Starting re-evaluation of rejected applications.", slog.Time("since", since))

	rejected, err := j.repo.FindRejectedSince(ctx, since)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to load rejected decisions, aborting job.", slog.Any("error", err))
		return ReevaluationSummary{}, fmt.Errorf("cannot run job, failed to load rejected decisions: %w", err)
	}

	apps := candidates(rejected)
	summary := ReevaluationSummary{Candidates: len(apps)}
	if len(apps) == 0 {
		j.logger.InfoContext(ctx, "No rejected applications to re-evaluate.")
		return summary, nil
	}

	var wg sync.WaitGroup
	var reevaluated, approved, stillRejected, failed atomic.Int32
	sem := make(chan struct{}, j.concurrency)

	for _, app := range apps {
		if ctx.Err() != nil {
			failed.Add(1)
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(app application) {
			defer wg.Done()
			defer func() { <-sem }()

			logCtx := j.logger.With(
				slog.String("customer", app.name),
				slog.String("amount", app.amount),
				slog.String("previousDecisionID", app.src.ID.String()),
			)

			d, runErr := j.service.CheckEligibility(ctx, app.name, app.src.Amount)
			if runErr != nil {
				logCtx.ErrorContext(ctx, "Failed to re-evaluate application", slog.Any("error", runErr))
				failed.Add(1)
				return
			}

			reevaluated.Add(1)
			if d.Eligible {
				approved.Add(1)
				logCtx.InfoContext(ctx, "Previously rejected application is now approved.", slog.String("decisionID", d.ID.String()))
			} else {
				stillRejected.Add(1)
				logCtx.DebugContext(ctx, "Application still rejected.", slog.Any("failedChecks", d.FailedChecks()))
			}
		}(app)
	}

	wg.Wait()

	summary.Reevaluated = int(reevaluated.Load())
	summary.NowApproved = int(approved.Load())
	summary.StillRejected = int(stillRejected.Load())
	summary.Failed = int(failed.Load())

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("candidates", summary.Candidates),
		slog.Int("reevaluated", summary.Reevaluated),
		slog.Int("now_approved", summary.NowApproved),
		slog.Int("still_rejected", summary.StillRejected),
		slog.Int("failed", summary.Failed),
	)
	if summary.Failed > 0 {
		summaryLog.WarnContext(ctx, "Re-evaluation job finished with errors.")
	} else {
		summaryLog.InfoContext(ctx, "Re-evaluation job finished successfully.")
	}
	return summary, nil
}
