package commands

import (
	"context"
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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. It flips the completed flag of
// the task as seen by the list it just loaded.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Toggle task completion" }
func (c *ToggleCmd) Usage() string      { return "todo toggle <n>" }
func (c *ToggleCmd) NeedsService() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, logger *slog.Logger, args []string, out, errOut io.Writer) int {
	num, code := parseRefArg(args, errOut)
	if code != exitcode.Success {
		return code
	}

	store := tasklist.New(svc, logger)
	task, code := lookupTask(ctx, store, num, errOut)
	if code != exitcode.Success {
		return code
	}

	if done := store.Run(ctx, store.Toggle(task.ID, task.Completed)); done.Err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", done.Err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
