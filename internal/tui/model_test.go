package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/tasklist"
	"todo/internal/testutil"
)

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// settle runs cmd and feeds every completion back into the model, the way
// the bubbletea loop would. Other messages are dropped.
func settle(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(completionMsg); ok {
			next, follow := model.Update(done)
			model = settle(t, next.(Model), follow)
		}
	}
	return model
}

// press sends a key and returns the model with the key's command, which is
// not run.
func press(model Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := model.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyCtrlE = tea.KeyMsg{Type: tea.KeyCtrlE}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func newTestModel(t *testing.T, svc *testutil.FakeService) (Model, *tasklist.Store) {
	t.Helper()
	store := tasklist.New(svc, nil)
	model := NewModel(context.Background(), store)
	return settle(t, model, model.Init()), store
}

func isQuit(cmd tea.Cmd) bool {
	for _, msg := range collect(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestInit_LoadsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("buy milk", false)
	svc.AddTask("walk dog", true)

	model, store := newTestModel(t, svc)

	if store.Len() != 2 {
		t.Fatalf("expected 2 tasks after init, got %d", store.Len())
	}
	view := model.View()
	for _, want := range []string{"Todo List", "[ ] buy milk", "[x] walk dog"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestInit_LoadFailureShowsEmptyList(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = errors.New("connection refused")

	model, store := newTestModel(t, svc)

	if store.Len() != 0 {
		t.Errorf("expected empty list, got %d", store.Len())
	}
	if !strings.Contains(model.View(), "no tasks") {
		t.Errorf("expected empty placeholder, got:\n%s", model.View())
	}
	if strings.Contains(model.View(), "connection refused") {
		t.Error("errors must not be rendered")
	}
}

func TestTypeAndSubmit(t *testing.T) {
	svc := testutil.NewFakeService()
	model, store := newTestModel(t, svc)

	model, _ = press(model, runes("write report"))
	if store.Input() != "write report" {
		t.Fatalf("expected input mirrored to store, got %q", store.Input())
	}

	model, cmd := press(model, keyEnter)
	model = settle(t, model, cmd)

	if store.Len() != 1 || store.Tasks()[0].Title != "write report" {
		t.Errorf("expected task added, got %v", store.Tasks())
	}
	if model.input.Value() != "" || store.Input() != "" {
		t.Errorf("expected input cleared, got %q / %q", model.input.Value(), store.Input())
	}
}

func TestSubmitEmpty_NoRequest(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)

	model, _ = press(model, runes("   "))
	_, cmd := press(model, keyEnter)

	if cmd != nil {
		t.Error("expected no command for whitespace title")
	}
	for _, call := range svc.Calls() {
		if call == "CreateTask" {
			t.Error("expected no create request")
		}
	}
}

func TestSubmitFailure_KeepsInput(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("503")
	model, store := newTestModel(t, svc)

	model, _ = press(model, runes("draft"))
	model, cmd := press(model, keyEnter)
	model = settle(t, model, cmd)

	if store.Len() != 0 {
		t.Errorf("expected no task, got %v", store.Tasks())
	}
	if model.input.Value() != "draft" {
		t.Errorf("expected input kept, got %q", model.input.Value())
	}
}

func TestInputFocus_LettersAreText(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)

	model, cmd := press(model, runes("q"))
	if isQuit(cmd) {
		t.Fatal("q in the input field must not quit")
	}
	if model.input.Value() != "q" {
		t.Errorf("expected q typed, got %q", model.input.Value())
	}
}

func TestFocusSwitch(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)

	if model.FocusRegion() != FocusInput {
		t.Fatal("expected input focus at start")
	}
	model, _ = press(model, keyTab)
	if model.FocusRegion() != FocusList {
		t.Fatal("expected list focus after tab")
	}
	if model.input.Focused() {
		t.Error("expected input blurred")
	}
	model, _ = press(model, keyTab)
	if model.FocusRegion() != FocusInput || !model.input.Focused() {
		t.Error("expected input focus after second tab")
	}
}

func TestListNavigation(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	model, _ := newTestModel(t, svc)
	model, _ = press(model, keyTab)

	model, _ = press(model, keyUp)
	if model.Cursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", model.Cursor())
	}
	model, _ = press(model, keyDown)
	model, _ = press(model, runes("j"))
	if model.Cursor() != 1 {
		t.Errorf("expected cursor clamped at 1, got %d", model.Cursor())
	}
	model, _ = press(model, runes("k"))
	if model.Cursor() != 0 {
		t.Errorf("expected cursor 0, got %d", model.Cursor())
	}

	if !strings.Contains(model.View(), "> [ ] a") {
		t.Errorf("expected cursor marker on a, got:\n%s", model.View())
	}
}

func TestToggleSelected(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	model, store := newTestModel(t, svc)
	model, _ = press(model, keyTab)
	model, _ = press(model, keyDown)

	model, cmd := press(model, keySpace)
	model = settle(t, model, cmd)

	tasks := store.Tasks()
	if tasks[0].Completed || !tasks[1].Completed {
		t.Errorf("expected only b completed, got %v", tasks)
	}

	model, cmd = press(model, runes("x"))
	settle(t, model, cmd)
	if store.Tasks()[1].Completed {
		t.Error("expected b reopened by second toggle")
	}
}

func TestDeleteSelected_ClampsCursor(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	model, store := newTestModel(t, svc)
	model, _ = press(model, keyTab)
	model, _ = press(model, keyDown)

	model, cmd := press(model, runes("d"))
	model = settle(t, model, cmd)

	if store.Len() != 1 || store.Tasks()[0].Title != "a" {
		t.Errorf("expected only a left, got %v", store.Tasks())
	}
	if model.Cursor() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", model.Cursor())
	}
}

func TestListKeys_EmptyListNoRequest(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)
	model, _ = press(model, keyTab)

	for _, k := range []tea.KeyMsg{keySpace, runes("d")} {
		if _, cmd := press(model, k); cmd != nil {
			t.Errorf("key %q: expected no command on empty list", k.String())
		}
	}
}

func TestReload(t *testing.T) {
	svc := testutil.NewFakeService()
	model, store := newTestModel(t, svc)
	svc.AddTask("added elsewhere", false)
	model, _ = press(model, keyTab)

	model, cmd := press(model, runes("r"))
	settle(t, model, cmd)

	if store.Len() != 1 {
		t.Errorf("expected reload to pick up new task, got %d", store.Len())
	}
}

func TestDiagnose_FromEitherFocus(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	model, store := newTestModel(t, svc)

	_, cmd := press(model, keyCtrlE)
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one completion, got %v", msgs)
	}
	done, ok := msgs[0].(completionMsg)
	if !ok || done.completion.Op != tasklist.OpDiagnose {
		t.Fatalf("expected diagnose completion, got %#v", msgs[0])
	}

	model, _ = press(model, keyTab)
	model, cmd = press(model, keyCtrlE)
	settle(t, model, cmd)

	if store.Len() != 1 {
		t.Error("expected list untouched")
	}
}

func TestQuit(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)

	if _, cmd := press(model, keyCtrlC); !isQuit(cmd) {
		t.Error("expected ctrl+c to quit from the input field")
	}

	model, _ = press(model, keyTab)
	if _, cmd := press(model, runes("q")); !isQuit(cmd) {
		t.Error("expected q to quit from the list")
	}
	if _, cmd := press(model, tea.KeyMsg{Type: tea.KeyEsc}); !isQuit(cmd) {
		t.Error("expected esc to quit from the list")
	}
}

func TestCompletionsApplyInArrivalOrder(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	model, store := newTestModel(t, svc)

	model, _ = press(model, keyTab)
	model, delCmd := press(model, runes("d"))
	model, _ = press(model, keyTab)
	model, _ = press(model, runes("b"))
	model, addCmd := press(model, keyEnter)

	// The add answer arrives before the delete answer.
	addMsgs := collect(addCmd)
	delMsgs := collect(delCmd)
	for _, msg := range append(addMsgs, delMsgs...) {
		next, _ := model.Update(msg)
		model = next.(Model)
	}

	tasks := store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "b" {
		t.Errorf("expected only b, got %v", tasks)
	}
}

func TestWindowResize(t *testing.T) {
	svc := testutil.NewFakeService()
	model, _ := newTestModel(t, svc)

	next, cmd := model.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	model = next.(Model)

	if cmd != nil {
		t.Error("expected no command on resize")
	}
	if model.help.Width != 40 {
		t.Errorf("expected help width 40, got %d", model.help.Width)
	}
}
