package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is matched by errors.Is when the store reports that a task
// does not exist.
var ErrNotFound = errors.New("not found")

// TaskID is the opaque identifier assigned by the task store.
// The store may encode it as a JSON number or a JSON string; the textual
// form is kept either way and is only compared for equality.
type TaskID string

// UnmarshalJSON accepts both numeric and string IDs.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("invalid task id: %s", data)
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid task id: %s", data)
	}
	*id = TaskID(n.String())
	return nil
}

// String returns the textual form of the ID.
func (id TaskID) String() string {
	return string(id)
}

// Task represents a single task record.
type Task struct {
	ID        TaskID `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}
