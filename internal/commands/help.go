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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. Command lines come from the
// default registry.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, logger *slog.Logger, args []string, out, errOut io.Writer) int {
	writeHelp(out, DefaultRegistry)
	return exitcode.Success
}

func writeHelp(w io.Writer, registry *Registry) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %-26s %s\n", "todo", "List tasks")
	for _, cmd := range registry.All() {
		fmt.Fprintf(w, "  %-26s %s\n", cmd.Usage(), cmd.Synopsis())
	}
	fmt.Fprint(w, commonFlagsText)
}

const commonFlagsText = `
Common flags:
  --config <dir>       Override config directory
  --base-url <url>     Task store address (default from config, then http://localhost:8080)
  --log-file <path>    Append JSON diagnostic records to this file
  --quiet              Suppress informational output
  --debug              Print debug logs to stderr
`
