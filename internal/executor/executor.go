// Package executor defines the command-execution boundary used by the bash
// action handler, and a local host implementation of it.
package executor

import "context"

// Executor runs shell commands on behalf of an agent. A production
// deployment might route this through a container or remote sandbox; the
// interface stays oblivious to where the command actually runs.
type Executor interface {
	// Execute runs cmd and blocks until it finishes or timeoutSecs elapses.
	// A timeout is reported as exit code 124, matching the conventional
	// timeout(1) exit status.
	Execute(ctx context.Context, cmd string, timeoutSecs int) (output string, exitCode int)

	// ExecuteBackground starts cmd without waiting for it to finish.
	// Failures to launch are swallowed — callers have no way to observe them,
	// matching the fire-and-forget nature of background execution.
	ExecuteBackground(ctx context.Context, cmd string)
}
