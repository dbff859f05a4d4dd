// Package store owns the ordered task list and its persistence.
package store

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"sparkdo/storage"
)

// DefaultKey is the persistence key holding the serialized task list.
const DefaultKey = "sparkdo-tasks"

// Priority is a task's priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a user-supplied string to a Priority. Unknown or empty
// input falls back to PriorityMedium, the default.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow
	case "high", "h":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Next cycles Low -> Medium -> High -> Low, used by the priority selector.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task is the sole persistent entity. The JSON shape is the persistence
// contract: a flat array of these records, no versioning field.
type Task struct {
	ID        int64    `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
}

// Stats holds derived completion statistics
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// Store holds the ordered task list and writes it through to a storage.KV
// on every mutation. It is exclusively owned by a single goroutine (the
// event loop); callers receive snapshot copies, never the backing slice.
type Store struct {
	kv  storage.KV
	key string
	log *logrus.Logger

	tasks  []Task
	nextID int64
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides the persistence key
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for best-effort persistence warnings
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store backed by kv. Call Load before the first mutation to
// pick up previously persisted tasks.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		log:    logrus.StandardLogger(),
		nextID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted task list. An absent key yields an empty list;
// a corrupt payload is logged and likewise degrades to an empty list, so
// startup never fails on bad data. The id counter is seeded past the
// highest persisted id.
func (s *Store) Load() []Task {
	s.tasks = nil
	s.nextID = 1

	raw, ok, err := s.kv.ReadString(s.key)
	if err != nil {
		s.log.WithError(err).Warn("failed to read persisted tasks, starting empty")
		return s.Tasks()
	}
	if !ok {
		return s.Tasks()
	}

	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		s.log.WithError(err).Warn("persisted tasks are corrupt, starting empty")
		return s.Tasks()
	}

	for i := range tasks {
		if tasks[i].Priority == "" {
			tasks[i].Priority = PriorityMedium
		}
		if tasks[i].ID >= s.nextID {
			s.nextID = tasks[i].ID + 1
		}
	}
	s.tasks = tasks
	return s.Tasks()
}

// Tasks returns a snapshot copy of the current list.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Add creates a task at the head of the list and persists. Empty or
// whitespace-only text is a no-op returning nil.
func (s *Store) Add(text string, priority Priority) *Task {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if priority == "" {
		priority = PriorityMedium
	}

	task := Task{
		ID:       s.nextID,
		Text:     text,
		Priority: priority,
	}
	s.nextID++

	s.tasks = append([]Task{task}, s.tasks...)
	s.persist()
	return &task
}

// Toggle flips the completion state of the task with the given id and
// persists. The boolean reports whether the task was found; the returned
// task carries the new Completed value so the caller can pick feedback.
func (s *Store) Toggle(id int64) (*Task, bool) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			s.persist()
			t := s.tasks[i]
			return &t, true
		}
	}
	return nil, false
}

// Delete removes the task with the given id if present and reports whether
// a removal occurred. It persists either way, making repeat calls idempotent.
func (s *Store) Delete(id int64) bool {
	found := false
	out := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	s.tasks = out
	s.persist()
	return found
}

// Reorder replaces the list wholesale with the given ordering and persists.
// The caller is the sole authority on newOrder being a permutation of the
// current set; the store does not re-validate.
func (s *Store) Reorder(newOrder []Task) {
	s.tasks = make([]Task, len(newOrder))
	copy(s.tasks, newOrder)
	s.persist()
}

// Move shifts the task with the given id to position pos (clamped to the
// list bounds) and persists. Convenience wrapper over Reorder for callers
// without a drag engine.
func (s *Store) Move(id int64, pos int) bool {
	from := -1
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			from = i
			break
		}
	}
	if from == -1 {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= len(s.tasks) {
		pos = len(s.tasks) - 1
	}

	task := s.tasks[from]
	rest := append(s.tasks[:from], s.tasks[from+1:]...)
	next := make([]Task, 0, len(rest)+1)
	next = append(next, rest[:pos]...)
	next = append(next, task)
	next = append(next, rest[pos:]...)
	s.Reorder(next)
	return true
}

// ClearAll removes every task and persists.
func (s *Store) ClearAll() {
	s.tasks = nil
	s.persist()
}

// ClearCompleted removes all completed tasks and persists.
func (s *Store) ClearCompleted() {
	out := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	s.tasks = out
	s.persist()
}

// Stats derives completion statistics. Percentage is 0 for an empty list.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.Percentage = int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
	}
	return st
}

// Serialize returns the JSON form of the current list, the same string the
// store writes through to persistence.
func (s *Store) Serialize() (string, error) {
	data, err := json.Marshal(s.tasksOrEmpty())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// tasksOrEmpty keeps the persisted form a JSON array even when nil.
func (s *Store) tasksOrEmpty() []Task {
	if s.tasks == nil {
		return []Task{}
	}
	return s.tasks
}

// persist writes the full serialized list through to storage. Failures are
// logged and swallowed: the in-memory list stays authoritative for the
// session and the next mutation retries naturally.
func (s *Store) persist() {
	data, err := json.Marshal(s.tasksOrEmpty())
	if err != nil {
		s.log.WithError(err).Warn("failed to serialize tasks")
		return
	}
	if err := s.kv.WriteString(s.key, string(data)); err != nil {
		s.log.WithError(err).Warn("failed to persist tasks")
	}
}
