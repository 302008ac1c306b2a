// Package alert turns a run's failures into one notification.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/pagemonitor/internal/domain"
	"github.com/hamed0406/pagemonitor/internal/notify"
)

const Header = "Page monitor found issues:"

type Dispatcher struct {
	// Notifier may be nil, in which case alerts are skipped with a warning.
	Notifier notify.Notifier
	Logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger, n notify.Notifier) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Notifier: n, Logger: logger}
}

// FormatMessage renders the header followed by one "• NAME – URL" line per
// failure, in order.
func FormatMessage(failures []domain.Failure) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, f := range failures {
		fmt.Fprintf(&b, "\n• %s – %s", f.Name, f.URL)
	}
	return b.String()
}

// Dispatch sends one alert for failures. Delivery is attempted once and its
// errors are logged, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, failures []domain.Failure) {
	if len(failures) == 0 {
		return
	}
	if d.Notifier == nil {
		d.Logger.Warn("alert webhook not configured; skipping alert",
			zap.Int("failures", len(failures)))
		return
	}

	msg := FormatMessage(failures)
	if err := d.Notifier.Send(ctx, msg); err != nil {
		fields := []zap.Field{zap.Int("failures", len(failures)), zap.Error(err)}
		var de *notify.DeliveryError
		if errors.As(err, &de) {
			fields = append(fields, zap.Int("status", de.StatusCode), zap.String("body", de.Body))
		}
		d.Logger.Error("alert delivery failed", fields...)
		return
	}
	d.Logger.Info("alert sent", zap.Int("failures", len(failures)))
}
