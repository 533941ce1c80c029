package agent

import "context"

// Agent defines the minimal lifecycle contract for runnable agent
// applications.
type Agent interface {
	// Run starts the agent and blocks until ctx is cancelled or a
	// termination signal arrives.
	Run(ctx context.Context) error
}
