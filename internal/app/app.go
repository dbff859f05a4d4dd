// Package app wires user intents to store mutations and the matching
// feedback cue, and derives the victory condition.
package app

import (
	"sparkdo/internal/chime"
	"sparkdo/store"
)

// App is the orchestrator between the task store and the synthesizer. It
// holds no task state of its own; the store stays authoritative.
type App struct {
	store *store.Store
	chime *chime.Synthesizer

	allDone bool // previous victory state, for edge-triggered celebration
	won     bool // set on the transition into all-done, cleared by TakeVictory
}

// New creates an App over an already-constructed store and synthesizer.
func New(s *store.Store, c *chime.Synthesizer) *App {
	return &App{store: s, chime: c}
}

// Load reads persisted tasks into the store. A pre-existing fully-completed
// list does not trigger a celebration on startup.
func (a *App) Load() []store.Task {
	tasks := a.store.Load()
	a.allDone = a.victoryState()
	return tasks
}

// Tasks returns a snapshot of the current list.
func (a *App) Tasks() []store.Task {
	return a.store.Tasks()
}

// Stats returns derived completion statistics.
func (a *App) Stats() store.Stats {
	return a.store.Stats()
}

// Add creates a task and plays the add cue. Blank text is a silent no-op.
func (a *App) Add(text string, priority store.Priority) *store.Task {
	task := a.store.Add(text, priority)
	if task != nil {
		a.chime.PlayAdd()
	}
	a.refreshVictory()
	return task
}

// Toggle flips a task's completion, plays the matching cue, and fires the
// victory fanfare when the flip completes the whole list.
func (a *App) Toggle(id int64) (*store.Task, bool) {
	task, found := a.store.Toggle(id)
	if !found {
		return nil, false
	}
	a.chime.PlayToggle(task.Completed)
	a.refreshVictory()
	return task, true
}

// Delete removes a task and plays the delete cue when something was
// removed. Removing the last open task can itself complete the list.
func (a *App) Delete(id int64) bool {
	found := a.store.Delete(id)
	if found {
		a.chime.PlayDelete()
	}
	a.refreshVictory()
	return found
}

// Reorder replaces the list ordering. No cue: reordering is not an outcome.
func (a *App) Reorder(newOrder []store.Task) {
	a.store.Reorder(newOrder)
}

// Move shifts one task to a new position.
func (a *App) Move(id int64, pos int) bool {
	return a.store.Move(id, pos)
}

// ClearAll dismisses the whole list.
func (a *App) ClearAll() {
	a.store.ClearAll()
	a.refreshVictory()
}

// ClearCompleted prunes completed tasks.
func (a *App) ClearCompleted() {
	a.store.ClearCompleted()
	a.refreshVictory()
}

// Credits plays the ambient easter-egg chime.
func (a *App) Credits() {
	a.chime.PlayCredits()
}

// Victory reports whether every task is completed and the list is
// non-empty.
func (a *App) Victory() bool {
	return a.victoryState()
}

// TakeVictory reports whether the most recent mutation transitioned the
// list into the all-done state, clearing the flag. The rendering layer
// uses this to spawn the celebration exactly once.
func (a *App) TakeVictory() bool {
	won := a.won
	a.won = false
	return won
}

func (a *App) victoryState() bool {
	st := a.store.Stats()
	return st.Total > 0 && st.Completed == st.Total
}

// refreshVictory fires the fanfare on the edge into all-done and re-arms
// once the state is left.
func (a *App) refreshVictory() {
	now := a.victoryState()
	if now && !a.allDone {
		a.won = true
		a.chime.PlayVictory()
	}
	a.allDone = now
}
