package probe

import (
	"context"

	"github.com/hamed0406/pagemonitor/internal/domain"
)

// Checker evaluates a single endpoint. Implementations never return errors:
// every failure is folded into the returned result.
type Checker interface {
	Check(ctx context.Context, ep domain.EndpointSpec) domain.CheckResult
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context, ep domain.EndpointSpec) domain.CheckResult

func (f CheckerFunc) Check(ctx context.Context, ep domain.EndpointSpec) domain.CheckResult {
	return f(ctx, ep)
}
