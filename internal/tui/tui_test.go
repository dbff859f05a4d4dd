package tui_test

import (
	"bytes"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/sirupsen/logrus"

	"sparkdo/internal/app"
	"sparkdo/internal/chime"
	"sparkdo/internal/tui"
	"sparkdo/storage"
	"sparkdo/store"
)

// sendKeyAndWait sends a key message and waits briefly for processing.
// Uses a minimal sleep since teatest messages are processed asynchronously.
func sendKeyAndWait(tm *teatest.TestModel, key tea.KeyMsg) {
	tm.Send(key)
	time.Sleep(20 * time.Millisecond)
}

// sendRunesAndWait sends a rune key message and waits briefly for processing.
func sendRunesAndWait(tm *teatest.TestModel, runes []rune) {
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyRunes, Runes: runes})
}

// typeString sends text one rune at a time.
func typeString(tm *teatest.TestModel, s string) {
	for _, r := range s {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	time.Sleep(50 * time.Millisecond)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestModel(t *testing.T, seed ...string) (*tui.Model, *chime.Recorder) {
	t.Helper()
	kv := storage.NewMemory()
	s := store.New(kv, store.WithLogger(quietLogger()))
	rec := chime.NewRecorder()
	a := app.New(s, chime.New(rec, chime.WithLogger(quietLogger())))
	a.Load()
	for _, text := range seed {
		a.Add(text, store.PriorityMedium)
	}
	a.TakeVictory()
	return tui.New(a), rec
}

// readAll reads all output from a reader and returns as bytes
func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return out
}

func TestTUILaunchEmptyList(t *testing.T) {
	model, _ := newTestModel(t)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("No tasks")) {
		t.Error("expected empty-list hint to be visible")
	}
}

func TestTUIAddTask(t *testing.T) {
	model, rec := newTestModel(t)
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'a'})
	typeString(tm, "Buy milk")
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEnter})

	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("Buy milk")) {
		t.Error("expected added task to be visible")
	}
	if rec.Emissions() == 0 {
		t.Error("expected the add cue to play")
	}
}

func TestTUIToggleTask(t *testing.T) {
	model, _ := newTestModel(t, "Write tests", "Review PR")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	// Toggle the first task; the checkmark should appear.
	sendRunesAndWait(tm, []rune{'c'})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("✓")) {
		t.Error("expected a completed checkbox after toggle")
	}
}

func TestTUIDeleteTask(t *testing.T) {
	model, _ := newTestModel(t, "Write tests", "Review PR")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	// Cursor starts on "Review PR" (most recent first); delete it.
	sendRunesAndWait(tm, []rune{'d'})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("Write tests")) {
		t.Error("expected remaining task to be visible")
	}
	if !bytes.Contains(out, []byte("0/1 done")) {
		t.Error("expected stats to reflect the deletion")
	}
}

func TestTUIProgressReflectsStats(t *testing.T) {
	model, _ := newTestModel(t, "one", "two")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'c'})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("1/2 done")) {
		t.Error("expected 1/2 done in the header")
	}
}

func TestTUIConfirmClearAll(t *testing.T) {
	model, _ := newTestModel(t, "one", "two")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'X'})
	sendRunesAndWait(tm, []rune{'y'})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("No tasks")) {
		t.Error("expected an empty list after clear all")
	}
}

func TestTUIClearAllDeclined(t *testing.T) {
	model, _ := newTestModel(t, "keep me")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'X'})
	sendRunesAndWait(tm, []rune{'n'})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("keep me")) {
		t.Error("expected task to survive a declined clear")
	}
}

func TestTUIClearAllDismissedWithEsc(t *testing.T) {
	model, _ := newTestModel(t, "keep me")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'X'})
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEsc})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("keep me")) {
		t.Error("expected task to survive an escaped clear dialog")
	}
}

func TestTUIVictoryPlaysFanfare(t *testing.T) {
	model, rec := newTestModel(t, "only task")
	tm := teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))

	time.Sleep(100 * time.Millisecond)

	before := rec.Emissions()
	sendRunesAndWait(tm, []rune{'c'})
	sendRunesAndWait(tm, []rune{'q'})

	readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	// Toggle cue plus the victory fanfare.
	if got := rec.Emissions() - before; got != 2 {
		t.Errorf("expected toggle+victory emissions, got %d", got)
	}
}
