package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// RecordedRequest is a request seen by TaskServer.
type RecordedRequest struct {
	Method      string
	Path        string
	ContentType string
	RequestID   string
	TraceParent string
	Body        string
}

// TaskServer is an in-process task store speaking the same JSON API as the
// real backend: integer IDs, {"tasks": [...]} listings, 201 on create and
// {"error": "..."} bodies on failure.
type TaskServer struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []serverTask
	nextID   int
	requests []RecordedRequest
	fail     map[string]int
	raw      map[string]string
}

type serverTask struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// NewTaskServer starts a TaskServer that is closed when the test ends.
func NewTaskServer(t *testing.T) *TaskServer {
	t.Helper()

	s := &TaskServer{
		nextID: 1,
		fail:   make(map[string]int),
		raw:    make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", s.handleList)
	mux.HandleFunc("POST /tasks", s.handleCreate)
	mux.HandleFunc("DELETE /tasks/{id}", s.handleDelete)
	mux.HandleFunc("PATCH /tasks/{id}", s.handlePatch)
	mux.HandleFunc("GET /error-test", s.handleErrorTest)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Seed adds a task directly to the store and returns its ID.
func (s *TaskServer) Seed(title string, completed bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.tasks = append(s.tasks, serverTask{ID: id, Title: title, Completed: completed})
	return id
}

// Fail makes every request matching route ("METHOD /path", e.g.
// "DELETE /tasks/{id}") answer with status and an error body.
func (s *TaskServer) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = status
}

// RawBody makes every request matching route answer 200 with body verbatim.
func (s *TaskServer) RawBody(route, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[route] = body
}

// Requests returns the requests received so far.
func (s *TaskServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Tasks returns the completed flag of every stored task, keyed by ID.
func (s *TaskServer) Tasks() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]bool, len(s.tasks))
	for _, t := range s.tasks {
		out[t.ID] = t.Completed
	}
	return out
}

func (s *TaskServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-Id"),
			TraceParent: r.Header.Get("Traceparent"),
			Body:        string(body),
		})
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// intercept answers injected failures and raw bodies. It reports whether
// the request was handled.
func (s *TaskServer) intercept(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	status, failing := s.fail[r.Pattern]
	raw, hasRaw := s.raw[r.Pattern]
	s.mu.Unlock()

	if failing {
		writeError(w, status, "injected failure")
		return true
	}
	if hasRaw {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, raw)
		return true
	}
	return false
}

func (s *TaskServer) handleList(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}
	s.mu.Lock()
	tasks := append([]serverTask{}, s.tasks...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *TaskServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}
	var req serverTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	task := serverTask{ID: s.nextID, Title: req.Title, Completed: req.Completed}
	s.nextID++
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, task)
}

func (s *TaskServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *TaskServer) handlePatch(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks[i].Completed = req.Completed
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *TaskServer) handleErrorTest(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}
	writeError(w, http.StatusInternalServerError, "Simulated internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
