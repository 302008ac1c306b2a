package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pagemonitor/internal/domain"
	"github.com/hamed0406/pagemonitor/internal/probe"
)

type Aggregator struct {
	Logger  *zap.Logger
	Checker probe.Checker
	// Concurrency bounds parallel checks. Values below 2 run the pass
	// sequentially in input order.
	Concurrency int
}

func NewAggregator(logger *zap.Logger, checker probe.Checker, concurrency int) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		Logger:      logger,
		Checker:     checker,
		Concurrency: concurrency,
	}
}

// Run checks every endpoint once and summarizes the pass. Invalid entries
// abort the run with domain.ErrConfiguration before any check is made;
// endpoint failures never produce an error.
func (a *Aggregator) Run(ctx context.Context, endpoints []domain.EndpointSpec) (domain.RunSummary, error) {
	for i, ep := range endpoints {
		if err := ep.Validate(); err != nil {
			return domain.RunSummary{}, fmt.Errorf("%w: endpoint #%d (%q): %v", domain.ErrConfiguration, i+1, ep.Name, err)
		}
	}

	var results []domain.CheckResult
	if a.Concurrency > 1 && len(endpoints) > 1 {
		results = a.checkParallel(ctx, endpoints)
	} else {
		results = a.checkSequential(ctx, endpoints)
	}

	summary := domain.Summarize(results)
	if summary.AllHealthy {
		a.Logger.Info("All pages look healthy",
			zap.Int("checked", len(results)))
	} else {
		a.Logger.Warn("One or more pages have issues",
			zap.Int("checked", len(results)),
			zap.Int("failed", len(summary.Failures)))
	}
	return summary, nil
}

func (a *Aggregator) checkSequential(ctx context.Context, endpoints []domain.EndpointSpec) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(endpoints))
	for _, ep := range endpoints {
		results = append(results, a.Checker.Check(ctx, ep))
	}
	return results
}

// checkParallel writes each result at its input index so the summary keeps
// input order regardless of completion order.
func (a *Aggregator) checkParallel(ctx context.Context, endpoints []domain.EndpointSpec) []domain.CheckResult {
	results := make([]domain.CheckResult, len(endpoints))

	var g errgroup.Group
	g.SetLimit(a.Concurrency)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			results[i] = a.Checker.Check(ctx, ep)
			return nil
		})
	}
	_ = g.Wait() // checks never fail
	return results
}
