package notify

import (
	"context"

	"go.uber.org/multierr"
)

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Multi delivers to every notifier and combines their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, text))
	}
	return err
}
