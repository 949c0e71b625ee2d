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
	Register(&DiagnoseCmd{})
}

// DiagnoseCmd calls the task store's diagnostic endpoint, which exists to
// exercise the store's error reporting. The answer is printed and logged.
type DiagnoseCmd struct{}

func (c *DiagnoseCmd) Name() string       { return "diagnose" }
func (c *DiagnoseCmd) Aliases() []string  { return []string{"error-test"} }
func (c *DiagnoseCmd) Synopsis() string   { return "Call the store's diagnostic endpoint" }
func (c *DiagnoseCmd) Usage() string      { return "todo diagnose" }
func (c *DiagnoseCmd) NeedsService() bool { return true }

func (c *DiagnoseCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DiagnoseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, logger *slog.Logger, args []string, out, errOut io.Writer) int {
	store := tasklist.New(svc, logger)
	done := store.Run(ctx, store.Diagnose())
	if done.Err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", done.Err)
		return exitcode.BackendError
	}

	fmt.Fprintln(out, string(done.Body))
	return exitcode.Success
}
