// Package tui implements the interactive single-page task list on top of
// bubbletea.
//
// The bubbletea event loop owns the tasklist.Store. Every operation runs as
// its own tea.Cmd and its Completion comes back as a message that Update
// applies, so the store has exactly one writer while any number of
// requests are in flight. Failed requests change nothing on screen; they
// are reported on the store's diagnostic logger.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasklist"
)

// Focus identifies the region receiving keyboard input.
type Focus int

const (
	FocusInput Focus = iota
	FocusList
)

// completionMsg delivers a finished request to Update.
type completionMsg struct {
	completion tasklist.Completion
}

// Model is the bubbletea model of the task list.
type Model struct {
	ctx   context.Context
	store *tasklist.Store
	keys  KeyMap

	input textinput.Model
	help  help.Model

	focus  Focus
	cursor int
}

// NewModel creates a model driving store. Requests run with ctx.
func NewModel(ctx context.Context, store *tasklist.Store) Model {
	input := textinput.New()
	input.Placeholder = "New task..."
	input.Prompt = "> "
	input.SetValue(store.Input())
	input.Focus()

	return Model{
		ctx:   ctx,
		store: store,
		keys:  DefaultKeyMap,
		input: input,
		help:  help.New(),
		focus: FocusInput,
	}
}

// Init implements tea.Model. Loads the list once at startup.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, model.run(model.store.Load()))
}

// run wraps a request in a tea.Cmd. bubbletea executes it on its own
// goroutine; nil requests (e.g. an empty title) produce no command.
func (model Model) run(request tasklist.Request) tea.Cmd {
	if request == nil {
		return nil
	}
	ctx := model.ctx
	return func() tea.Msg {
		return completionMsg{completion: request(ctx)}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case completionMsg:
		model.store.Apply(message.completion)
		model.syncInput()
		model.clampCursor()
		return model, nil

	case tea.WindowSizeMsg:
		model.input.Width = max(message.Width-len(model.input.Prompt)-1, 0)
		model.help.Width = message.Width
		return model, nil

	case tea.KeyMsg:
		if key.Matches(message, model.keys.ForceQuit) {
			return model, tea.Quit
		}
		if key.Matches(message, model.keys.Diagnose) {
			return model, model.run(model.store.Diagnose())
		}
		if model.focus == FocusInput {
			return model.handleInputKeys(message)
		}
		return model.handleListKeys(message)
	}

	var cmd tea.Cmd
	model.input, cmd = model.input.Update(message)
	return model, cmd
}

func (model Model) handleInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Submit):
		return model, model.run(model.store.Add())

	case key.Matches(message, model.keys.Focus):
		model.focus = FocusList
		model.input.Blur()
		return model, nil
	}

	var cmd tea.Cmd
	model.input, cmd = model.input.Update(message)
	model.store.SetInput(model.input.Value())
	return model, cmd
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Focus):
		model.focus = FocusInput
		return model, model.input.Focus()

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < model.store.Len()-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.Toggle):
		if task, ok := model.selected(); ok {
			return model, model.run(model.store.Toggle(task.ID, task.Completed))
		}

	case key.Matches(message, model.keys.Delete):
		if task, ok := model.selected(); ok {
			return model, model.run(model.store.Delete(task.ID))
		}

	case key.Matches(message, model.keys.Reload):
		return model, model.run(model.store.Load())
	}
	return model, nil
}

// FocusRegion returns the region currently receiving keys.
func (model Model) FocusRegion() Focus { return model.focus }

// Cursor returns the index of the highlighted task.
func (model Model) Cursor() int { return model.cursor }

// selected returns the task under the cursor.
func (model Model) selected() (service.Task, bool) {
	tasks := model.store.Tasks()
	if model.cursor < 0 || model.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[model.cursor], true
}

// syncInput mirrors the store's input text into the field, which changes
// when a successful add clears it.
func (model *Model) syncInput() {
	if model.input.Value() != model.store.Input() {
		model.input.SetValue(model.store.Input())
	}
}

// clampCursor keeps the cursor on a task after the list shrinks.
func (model *Model) clampCursor() {
	if model.cursor >= model.store.Len() {
		model.cursor = model.store.Len() - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

// View implements tea.Model.
func (model Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo List"))
	b.WriteString("\n")
	b.WriteString(model.input.View())
	b.WriteString("\n\n")

	tasks := model.store.Tasks()
	if len(tasks) == 0 {
		b.WriteString(faintStyle.Render("no tasks"))
		b.WriteString("\n")
	}
	for i, task := range tasks {
		title := output.NormalizeTitle(task.Title)
		if task.Completed {
			title = completedStyle.Render(title)
		} else {
			title = taskStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s", output.Checkbox(task.Completed), title)
		if model.focus == FocusList && i == model.cursor {
			line = selectedStyle.Render(">") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if model.focus == FocusInput {
		b.WriteString(model.help.View(inputHelp{model.keys}))
	} else {
		b.WriteString(model.help.View(listHelp{model.keys}))
	}
	return b.String()
}
