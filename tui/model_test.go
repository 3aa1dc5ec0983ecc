package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"reply-presets/preset"
)

type edit struct {
	id, text string
}

type recordingEditor struct {
	edits []edit
}

func (r *recordingEditor) Edit(id, text string) {
	r.edits = append(r.edits, edit{id, text})
}

func typeText(m *model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewModelShowsCurrentValues(t *testing.T) {
	m := newModel(&recordingEditor{}, preset.DefaultFields, preset.Set{"Thanks": "ty"})
	if got := m.inputs[1].Value(); got != "ty" {
		t.Fatalf("expected Thanks input to hold 'ty', got %q", got)
	}
	if got := m.inputs[0].Value(); got != "" {
		t.Fatalf("expected OK input empty, got %q", got)
	}
	if m.inputs[0].Placeholder != "OK" || m.inputs[2].Placeholder != "What's up?" {
		t.Fatal("placeholders should come from the field list")
	}
	if !m.inputs[0].Focused() {
		t.Fatal("first input should start focused")
	}
}

func TestTypingEditsFocusedField(t *testing.T) {
	rec := &recordingEditor{}
	m := newModel(rec, preset.DefaultFields, nil)

	typeText(m, "Sure ")

	if len(rec.edits) != 5 {
		t.Fatalf("expected one edit per keystroke, got %d", len(rec.edits))
	}
	last := rec.edits[len(rec.edits)-1]
	if last.id != "OK" || last.text != "Sure" {
		t.Fatalf("expected trimmed edit OK=Sure, got %+v", last)
	}
}

func TestClearingFieldSendsEmptyEdit(t *testing.T) {
	rec := &recordingEditor{}
	m := newModel(rec, preset.DefaultFields, preset.Set{"OK": "k"})
	m.inputs[0].CursorEnd()

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	if len(rec.edits) != 1 || rec.edits[0] != (edit{"OK", ""}) {
		t.Fatalf("expected OK cleared, got %+v", rec.edits)
	}
}

func TestNavigationDoesNotEdit(t *testing.T) {
	rec := &recordingEditor{}
	m := newModel(rec, preset.DefaultFields, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != 2 {
		t.Fatalf("expected focus on row 2, got %d", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.focus != 1 {
		t.Fatalf("expected focus on row 1, got %d", m.focus)
	}
	if len(rec.edits) != 0 {
		t.Fatalf("navigation must not edit, got %+v", rec.edits)
	}

	typeText(m, "x")
	if rec.edits[0].id != "Thanks" {
		t.Fatalf("expected edit on Thanks, got %+v", rec.edits[0])
	}
}

func TestFocusWraps(t *testing.T) {
	m := newModel(&recordingEditor{}, preset.DefaultFields, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.focus != len(preset.DefaultFields)-1 {
		t.Fatalf("expected focus to wrap to the last row, got %d", m.focus)
	}
}

func TestSnapshotSparesFocusedField(t *testing.T) {
	rec := &recordingEditor{}
	m := newModel(rec, preset.DefaultFields, nil)
	typeText(m, "typing")

	m.Update(presetsMsg(preset.Set{"OK": "stale", "BRB": "brb"}))

	if got := m.inputs[0].Value(); got != "typing" {
		t.Fatalf("focused input was overwritten: %q", got)
	}
	if got := m.inputs[6].Value(); got != "brb" {
		t.Fatalf("expected BRB refreshed, got %q", got)
	}
	if len(rec.edits) != len("typing") {
		t.Fatalf("snapshots must not produce edits, got %d", len(rec.edits))
	}
}

func TestQuitKeys(t *testing.T) {
	m := newModel(&recordingEditor{}, preset.DefaultFields, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("esc should quit")
	}
}

func TestViewListsPlaceholders(t *testing.T) {
	m := newModel(&recordingEditor{}, preset.DefaultFields, nil)
	out := m.View()
	if !strings.Contains(out, "REPLY PRESETS") {
		t.Fatal("missing section header")
	}
	if !strings.Contains(out, helpText) {
		t.Fatal("missing help text")
	}
}

func TestFillSetsFocusedField(t *testing.T) {
	rec := &recordingEditor{}
	m := newModel(rec, preset.DefaultFields, nil)

	m.fill(preset.Set{"OK": "Sure", "BRB": "brb"})

	if got := m.inputs[0].Value(); got != "Sure" {
		t.Fatalf("focused input not filled: %q", got)
	}
	if got := m.inputs[6].Value(); got != "brb" {
		t.Fatalf("expected BRB filled, got %q", got)
	}
	if got := m.inputs[1].Value(); got != "" {
		t.Fatalf("absent preset should stay empty, got %q", got)
	}
	if len(rec.edits) != 0 {
		t.Fatalf("filling must not produce edits, got %v", rec.edits)
	}
}

func TestSnapshotBeforeFillIsReplaced(t *testing.T) {
	m := newModel(&recordingEditor{}, preset.DefaultFields, nil)

	m.Update(presetsMsg(preset.Set{"Thanks": "early"}))
	m.fill(preset.Set{"Thanks": "loaded"})

	if got := m.inputs[1].Value(); got != "loaded" {
		t.Fatalf("got %q, want loaded value", got)
	}
}
