// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad config, out of range).
	UserError = 1

	// BackendError indicates a task store, network or UI runtime error.
	BackendError = 3
)
