package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasklist"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "todo rm <n>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, logger *slog.Logger, args []string, out, errOut io.Writer) int {
	num, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}

	store := tasklist.New(svc, logger)
	task, code := lookupTask(ctx, store, num, errOut)
	if code != exitcode.Success {
		return code
	}

	if done := store.Run(ctx, store.Delete(task.ID)); done.Err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", done.Err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// parseRefArg parses the task reference and reports user errors on errOut.
func parseRefArg(args []string, errOut io.Writer) (int, int) {
	num, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return 0, exitcode.UserError
	}
	return num, exitcode.Success
}

// lookupTask resolves a task number against a freshly loaded list and
// reports failures on errOut.
func lookupTask(ctx context.Context, store *tasklist.Store, num int, errOut io.Writer) (service.Task, int) {
	task, err := resolveTask(ctx, store, num)
	if errors.Is(err, errOutOfRange) {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return service.Task{}, exitcode.UserError
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return service.Task{}, exitcode.BackendError
	}
	return task, exitcode.Success
}
