package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	baseURL   string
	logFile   string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.baseURL, "base-url", "", "")
	fs.StringVar(&f.logFile, "log-file", "", "")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	fs.SetInterspersed(true)

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(errOut, "usage: %s\n", cmd.Usage())
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	positionalArgs := fs.Args()

	// Commands that never reach the store run on defaults when the
	// configuration is broken.
	cfg, configErr := config.New(common.configDir)
	if configErr != nil {
		if cmd.NeedsService() {
			fmt.Fprintf(errOut, "error: %s\n", configErr)
			return exitcode.UserError
		}
		cfg = config.Default(common.configDir)
	}
	if common.baseURL != "" && cmd.NeedsService() {
		if err := cfg.SetBaseURL(common.baseURL); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}
	if common.logFile != "" {
		cfg.LogPath = common.logFile
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	logOpts := logging.Options{Console: errOut, Debug: cfg.Debug, FilePath: cfg.LogPath}
	if owner, ok := cmd.(commands.TerminalOwner); ok && owner.OwnsTerminal() {
		// The terminal belongs to the UI; diagnostics go to a file only.
		logOpts.Console = nil
		if logOpts.FilePath == "" {
			if err := cfg.EnsureDir(); err != nil {
				fmt.Fprintf(errOut, "error: cannot create config dir: %s\n", err)
				return exitcode.UserError
			}
			logOpts.FilePath = cfg.DefaultLogPath()
		}
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(errOut, "error: cannot open log file: %s\n", err)
		return exitcode.UserError
	}
	defer closeLog()

	if configErr != nil {
		logger.Debug("ignoring configuration error", "command", cmd.Name(), "error", configErr)
	}

	var svc service.Service
	if cmd.NeedsService() && d.factory != nil {
		svc, err = d.factory(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	logger.Debug("dispatching command", "command", cmd.Name(), "base_url", cfg.BaseURL)
	return cmd.Run(ctx, cfg, svc, logger, positionalArgs, out, errOut)
}
