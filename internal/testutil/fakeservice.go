// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"todo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  []string

	// Error injection for testing
	ListTasksErr    error
	CreateTaskErr   error
	DeleteTaskErr   error
	SetCompletedErr error
	TriggerErrorErr error

	// TriggerErrorBody is returned by TriggerError.
	TriggerErrorBody json.RawMessage
}

// NewFakeService creates an empty FakeService. IDs are assigned from 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:           1,
		TriggerErrorBody: json.RawMessage(`{"error":"Simulated internal error"}`),
	}
}

// AddTask seeds a task and returns its ID.
func (f *FakeService) AddTask(title string, completed bool) service.TaskID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.allocID()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
	return id
}

// Snapshot returns the server-side tasks.
func (f *FakeService) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns the names of the methods invoked so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeService) allocID() service.TaskID {
	id := service.TaskID(strconv.Itoa(f.nextID))
	f.nextID++
	return id
}

func (f *FakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Snapshot(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title string) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{ID: f.allocID(), Title: title}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.TaskID) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id service.TaskID, completed bool) error {
	f.record("SetCompleted")
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return service.ErrNotFound
}

// TriggerError implements service.Service.
func (f *FakeService) TriggerError(ctx context.Context) (json.RawMessage, error) {
	f.record("TriggerError")
	if f.TriggerErrorErr != nil {
		return nil, f.TriggerErrorErr
	}
	return f.TriggerErrorBody, nil
}
