package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/pagemonitor/internal/alert"
	"github.com/hamed0406/pagemonitor/internal/config"
	"github.com/hamed0406/pagemonitor/internal/domain"
	"github.com/hamed0406/pagemonitor/internal/logging"
	"github.com/hamed0406/pagemonitor/internal/monitor"
	"github.com/hamed0406/pagemonitor/internal/notify"
	"github.com/hamed0406/pagemonitor/internal/probe"
	"github.com/hamed0406/pagemonitor/internal/targets"
)

// runMonitor performs one pass. Only configuration problems are returned as
// errors; failing pages are reported through logs and the alert.
func runMonitor(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.endpoints != "" {
		cfg.EndpointsFile = opts.endpoints
	}

	logger, closeLog, err := logging.NewLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if u, ok := cfg.Alert.Webhook(); ok {
		if err := domain.ValidateURL(u); err != nil {
			logger.Warn("alert webhook URL looks unusable; delivery will fail", zap.Error(err))
		}
	}

	endpoints, err := targets.Load(cfg.EndpointsFile)
	if err != nil {
		logger.Error("failed to load endpoints", zap.String("file", cfg.EndpointsFile), zap.Error(err))
		return err
	}
	logger.Info("monitor_start",
		zap.String("file", cfg.EndpointsFile),
		zap.Int("endpoints", len(endpoints)),
		zap.Duration("timeout", cfg.Check.Timeout),
		zap.Int("concurrency", cfg.Check.Concurrency),
	)

	agg := monitor.NewAggregator(logger, newChecker(logger, cfg.Check), cfg.Check.Concurrency)
	summary, err := agg.Run(ctx, endpoints)
	if err != nil {
		logger.Error("invalid endpoint list", zap.String("file", cfg.EndpointsFile), zap.Error(err))
		return err
	}

	if !summary.AllHealthy {
		n, closeNotifier := newNotifier(cfg.Alert, runID)
		alert.NewDispatcher(logger, n).Dispatch(ctx, summary.Failures)
		closeNotifier()
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

func newChecker(logger *zap.Logger, cfg config.CheckConfig) probe.Checker {
	var chk probe.Checker = probe.NewHTTPChecker(logger, cfg.Timeout)
	if cfg.RetryAttempts > 1 {
		chk = &probe.RetryChecker{Inner: chk, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}
	return chk
}

// newNotifier returns nil when no alert channel is configured. The returned
// func releases channel resources and is always non-nil.
func newNotifier(cfg config.AlertConfig, runID string) (notify.Notifier, func()) {
	var sinks notify.Multi
	closeFn := func() {}

	if u, ok := cfg.Webhook(); ok {
		sinks = append(sinks, notify.NewWebhook(u, cfg.Timeout))
	}
	if k := notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, runID, cfg.Timeout); k != nil {
		sinks = append(sinks, k)
		closeFn = func() { _ = k.Close() }
	}

	switch len(sinks) {
	case 0:
		return nil, closeFn
	case 1:
		return sinks[0], closeFn
	default:
		return sinks, closeFn
	}
}
