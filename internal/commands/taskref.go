package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"todo/internal/service"
	"todo/internal/tasklist"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// errOutOfRange is returned by resolveTask when the number is past the end
// of the list.
var errOutOfRange = errors.New("task number out of range")

// ParseTaskRef parses a task reference: the 1-based position of a task as
// printed by the list command, so zero is rejected. Only the first argument
// is considered.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}

	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil || num < 1 {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// resolveTask loads the list into store and returns the task at the
// 1-based position num. Load failures are returned as they are.
func resolveTask(ctx context.Context, store *tasklist.Store, num int) (service.Task, error) {
	if num < 1 {
		return service.Task{}, errOutOfRange
	}
	if c := store.Run(ctx, store.Load()); c.Err != nil {
		return service.Task{}, c.Err
	}
	tasks := store.Tasks()
	if num > len(tasks) {
		return service.Task{}, errOutOfRange
	}
	return tasks[num-1], nil
}
