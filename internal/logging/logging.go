// Package logging builds the diagnostic logger. Operational errors from
// the task store go here, never to the task list display.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects the sinks of the diagnostic logger.
type Options struct {
	// Console receives human-readable records when Debug is set.
	Console io.Writer

	// Debug enables debug-level records on Console.
	Debug bool

	// FilePath, when set, receives every record as a JSON line.
	FilePath string
}

// New returns the diagnostic logger and a func releasing its file.
// With neither Debug nor FilePath set, records are discarded.
func New(opts Options) (*slog.Logger, func(), error) {
	var handlers fanoutHandler
	closer := func() {}

	if opts.Debug && opts.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Console, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if opts.FilePath != "" {
		handler, closeFile, err := openFileHandler(opts.FilePath)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, handler)
		closer = closeFile
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler), closer, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	default:
		return slog.New(handlers), closer, nil
	}
}

// openFileHandler appends JSON records to path, creating parent
// directories as needed.
func openFileHandler(path string) (slog.Handler, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to every sub-handler enabled for its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
