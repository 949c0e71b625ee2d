// Package tasklist keeps the local task list in sync with the task store.
//
// A Store is owned by a single event loop. The list operations (Load, Add,
// Delete, Toggle, Diagnose) never touch local state: each returns a Request
// that performs exactly one call against the store, possibly on another
// goroutine, and yields a Completion. The owner hands completions back to
// Apply in the order they arrive, which is the only place the list and the
// input text change. Failed completions leave state untouched and are
// reported on the diagnostic logger only.
package tasklist

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"todo/internal/service"
)

// Op identifies the operation a completion belongs to.
type Op string

const (
	OpLoad     Op = "load"
	OpAdd      Op = "add"
	OpDelete   Op = "delete"
	OpToggle   Op = "toggle"
	OpDiagnose Op = "diagnose"
)

// Request performs one task store call and describes its outcome.
// It does not touch the Store and may run on any goroutine.
type Request func(ctx context.Context) Completion

// Completion is the outcome of a Request. Apply it with Store.Apply.
type Completion struct {
	Op  Op
	ID  service.TaskID
	Err error

	// Body is the diagnostic endpoint's answer (OpDiagnose only).
	Body json.RawMessage

	apply func(s *Store)
}

// Store holds the local task list and the pending input text.
type Store struct {
	svc    service.Service
	logger *slog.Logger

	tasks []service.Task
	input string
}

// New creates an empty store backed by svc.
func New(svc service.Service, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{svc: svc, logger: logger}
}

// Tasks returns a copy of the local list.
func (s *Store) Tasks() []service.Task {
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks in the local list.
func (s *Store) Len() int { return len(s.tasks) }

// Find returns the first task with the given ID.
func (s *Store) Find(id service.TaskID) (service.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Input returns the pending title text.
func (s *Store) Input() string { return s.input }

// SetInput replaces the pending title text.
func (s *Store) SetInput(text string) { s.input = text }

// Load fetches the whole list. On success the local list is replaced.
func (s *Store) Load() Request {
	svc := s.svc
	return func(ctx context.Context) Completion {
		tasks, err := svc.ListTasks(ctx)
		if err != nil {
			return Completion{Op: OpLoad, Err: err}
		}
		return Completion{Op: OpLoad, apply: func(s *Store) {
			s.tasks = append([]service.Task(nil), tasks...)
		}}
	}
}

// Add creates a task from the pending input text. See AddTitle.
func (s *Store) Add() Request {
	return s.AddTitle(s.input)
}

// AddTitle creates a task with the given title. A title that is empty after
// trimming whitespace is a no-op and returns nil. The title is sent as given.
// On success the returned task is appended and the input text cleared.
func (s *Store) AddTitle(title string) Request {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	svc := s.svc
	return func(ctx context.Context) Completion {
		task, err := svc.CreateTask(ctx, title)
		if err != nil {
			return Completion{Op: OpAdd, Err: err}
		}
		return Completion{Op: OpAdd, ID: task.ID, apply: func(s *Store) {
			s.tasks = append(s.tasks, task)
			s.input = ""
		}}
	}
}

// Delete removes a task. On success every local task with that ID is
// filtered out; a failed delete leaves the entry in place even though the
// store may already have removed it.
func (s *Store) Delete(id service.TaskID) Request {
	svc := s.svc
	return func(ctx context.Context) Completion {
		if err := svc.DeleteTask(ctx, id); err != nil {
			return Completion{Op: OpDelete, ID: id, Err: err}
		}
		return Completion{Op: OpDelete, ID: id, apply: func(s *Store) {
			kept := make([]service.Task, 0, len(s.tasks))
			for _, t := range s.tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			s.tasks = kept
		}}
	}
}

// Toggle flips completion of a task, given the completed value the caller
// saw when it invoked the toggle. The store is sent !completed and, on
// success, the local task is set to !completed as well. Two toggles in
// flight for the same task both send the same value.
func (s *Store) Toggle(id service.TaskID, completed bool) Request {
	svc := s.svc
	want := !completed
	return func(ctx context.Context) Completion {
		if err := svc.SetCompleted(ctx, id, want); err != nil {
			return Completion{Op: OpToggle, ID: id, Err: err}
		}
		return Completion{Op: OpToggle, ID: id, apply: func(s *Store) {
			for i := range s.tasks {
				if s.tasks[i].ID == id {
					s.tasks[i].Completed = want
				}
			}
		}}
	}
}

// Diagnose calls the store's diagnostic endpoint and logs its answer.
// It never changes the list.
func (s *Store) Diagnose() Request {
	svc := s.svc
	logger := s.logger
	return func(ctx context.Context) Completion {
		body, err := svc.TriggerError(ctx)
		if err != nil {
			return Completion{Op: OpDiagnose, Err: err}
		}
		return Completion{Op: OpDiagnose, Body: body, apply: func(*Store) {
			logger.Info("diagnostic trigger answered", "body", string(body))
		}}
	}
}

// Apply folds a completion into the store. Failed completions are logged
// and change nothing.
func (s *Store) Apply(c Completion) {
	if c.Err != nil {
		attrs := []any{"op", string(c.Op), "error", c.Err}
		if c.ID != "" {
			attrs = append(attrs, "id", c.ID.String())
		}
		s.logger.Error("task store request failed", attrs...)
		return
	}
	if c.apply != nil {
		c.apply(s)
	}
}

// Run executes req and applies its completion. It is the synchronous path
// used by one-shot commands; a nil request is a no-op.
func (s *Store) Run(ctx context.Context, req Request) Completion {
	if req == nil {
		return Completion{}
	}
	c := req(ctx)
	s.Apply(c)
	return c
}
