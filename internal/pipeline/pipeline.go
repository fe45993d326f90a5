package pipeline

import "context"

// Client drives monitoring cycles. RunCycle performs one complete pass over
// all monitored accounts and returns the number of new posts; once a cycle
// has started partial success is success, so there is no error return.
type Client interface {
	RunCycle(ctx context.Context) int
	ScheduleCycles(ctx context.Context) error
}
