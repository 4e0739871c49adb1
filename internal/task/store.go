package task

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultFile is the task file name used when none is configured.
const DefaultFile = ".taskflow.json"

// Store holds the task sequence of one task file in insertion order.
// Every mutation rewrites the whole file.
type Store struct {
	path        string
	tasks       []Task
	lastUpdated time.Time
	loadErr     error
	now         func() time.Time
	logger      *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger that receives load warnings and save events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open loads the task file at path. Loading is best-effort: a missing file
// yields an empty store, and an unreadable or malformed file is logged as a
// warning and also yields an empty store. Open never fails.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		tasks:  []Task{},
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.loadErr = fmt.Errorf("read task file: %w", err)
		s.logger.Warn("Could not load tasks", "path", s.path, "err", err)
		return
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.loadErr = fmt.Errorf("parse task file: %w", err)
		s.logger.Warn("Could not load tasks", "path", s.path, "err", err)
		return
	}

	for _, issue := range validateBytes(data) {
		s.logger.Warn("Task file does not match schema", "path", s.path, "issue", issue)
	}

	s.tasks = doc.Tasks
	s.lastUpdated = doc.LastUpdated
	s.logger.Debug("Loaded tasks", "path", s.path, "count", len(s.tasks))
}

// Path returns the task file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the task file is present on disk.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// LoadErr returns the error that caused Open to fall back to an empty store,
// or nil.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// LastUpdated returns the store-level timestamp from the last load or save.
func (s *Store) LastUpdated() time.Time {
	return s.lastUpdated
}

// Now returns the current time from the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

// Save rewrites the task file with the full task sequence and a fresh
// last_updated timestamp. The write goes to a temporary file that is renamed
// over the target.
func (s *Store) Save() error {
	doc := Document{
		Tasks:       s.tasks,
		LastUpdated: s.now().UTC(),
	}
	data, err := Encode(doc)
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		s.logger.Error("Error saving tasks", "path", s.path, "err", err)
		return &PersistError{Path: s.path, Err: err}
	}
	s.lastUpdated = doc.LastUpdated
	s.logger.Debug("Saved tasks", "path", s.path, "count", len(s.tasks))
	return nil
}

// Encode renders a document with 2-space indentation and a trailing newline.
// Non-ASCII text is written verbatim.
func Encode(doc Document) ([]byte, error) {
	if doc.Tasks == nil {
		doc.Tasks = []Task{}
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Tags == nil {
			doc.Tasks[i].Tags = []string{}
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal task file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// nextID returns max existing id + 1, or 1 for an empty store.
func (s *Store) nextID() int {
	maxID := 0
	for _, t := range s.tasks {
		maxID = max(maxID, t.ID)
	}
	return maxID + 1
}

func (s *Store) index(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new task and persists the store. An empty priority means
// medium. The due date is stored as given; "" means no due date.
// If only the save fails, the new task is returned together with a
// *PersistError.
func (s *Store) Add(title string, priority Priority, tags []string, due string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrEmptyTitle
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Task{}, fmt.Errorf("%w %q", ErrInvalidPriority, priority)
	}

	now := s.now().UTC()
	t := Task{
		ID:       s.nextID(),
		Title:    title,
		Priority: priority,
		Status:   StatusTodo,
		Tags:     append([]string{}, tags...),
		Created:  now,
		Updated:  now,
	}
	if due != "" {
		t.DueDate = &due
	}
	s.tasks = append(s.tasks, t)

	return t.clone(), s.Save()
}

// Get returns the task with the given id.
func (s *Store) Get(id int) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

// Update applies the set fields of p to the task with the given id, advances
// its updated timestamp and persists the store. An empty patch still advances
// updated. Invalid patch values are rejected before anything changes.
func (s *Store) Update(id int, p Patch) (Task, error) {
	i := s.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err := p.validate(); err != nil {
		return s.tasks[i].clone(), err
	}

	t := &s.tasks[i]
	p.apply(t)
	now := s.now().UTC()
	if now.Before(t.Created) {
		now = t.Created
	}
	t.Updated = now

	return t.clone(), s.Save()
}

// SetStatus moves a task to status st. Any status may follow any other.
func (s *Store) SetStatus(id int, st Status) (Task, error) {
	return s.Update(id, Patch{Status: &st})
}

// MarkTodo moves a task back to todo.
func (s *Store) MarkTodo(id int) (Task, error) {
	return s.SetStatus(id, StatusTodo)
}

// MarkInProgress moves a task to in_progress.
func (s *Store) MarkInProgress(id int) (Task, error) {
	return s.SetStatus(id, StatusInProgress)
}

// MarkDone moves a task to done.
func (s *Store) MarkDone(id int) (Task, error) {
	return s.SetStatus(id, StatusDone)
}

// MarkBlocked moves a task to blocked.
func (s *Store) MarkBlocked(id int) (Task, error) {
	return s.SetStatus(id, StatusBlocked)
}

// Delete removes the task with the given id and persists the store. The
// removed task is returned.
func (s *Store) Delete(id int) (Task, error) {
	i := s.index(id)
	if i < 0 {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return removed, s.Save()
}

// List returns the tasks matching f, sorted by priority rank then id.
// The store itself is not reordered.
func (s *Store) List(f Filter) []Task {
	var out []Task
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t.clone())
		}
	}
	SortByPriority(out)
	return out
}

// SortByPriority orders tasks high, medium, low, unknown; ties by id.
func SortByPriority(tasks []Task) {
	slices.SortFunc(tasks, func(a, b Task) int {
		if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// IsOverdue reports whether t is overdue according to the store's clock.
func (s *Store) IsOverdue(t Task) bool {
	return IsOverdue(t, s.now())
}

// Stats aggregates the current tasks according to the store's clock.
func (s *Store) Stats() Stats {
	return ComputeStats(s.tasks, s.now())
}
