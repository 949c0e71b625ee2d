package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasklist"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add <title...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, logger *slog.Logger, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.Join(args, " ")

	store := tasklist.New(svc, logger)
	req := store.AddTitle(title)
	if req == nil {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	if done := store.Run(ctx, req); done.Err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", done.Err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
