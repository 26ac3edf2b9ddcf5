// Package store persists loop documents and the workstream plan as files on
// disk. The filesystem is the single source of truth: every operation reads
// the file fresh, applies a pure transformation from internal/artefact or
// internal/plan, and writes the whole file back atomically under a
// per-document lock.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"ora/internal/artefact"
	"ora/internal/plan"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// Store errors.
var (
	ErrNotFound   = errors.New("artefact not found")
	errFileExists = errors.New("artefact file already exists")
)

// Store resolves artefact ids to files under a loop directory and owns the
// workstream plan file.
type Store struct {
	dir      string
	planPath string
	now      func() time.Time
	newID    func() string
}

// Option customizes a Store during construction.
type Option func(*Store)

// WithClock overrides the timestamp provider used for new log and trace
// entries.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.now = clock
	}
}

// WithIDGenerator overrides uuid minting for new loop documents.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// New creates a store rooted at dir, with the plan at planPath.
func New(dir, planPath string, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		planPath: planPath,
		now:      time.Now,
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// Dir returns the loop directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for an artefact id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".md")
}

// Read returns the raw contents of an artefact document.
func (s *Store) Read(id string) (string, error) {
	content, err := os.ReadFile(s.Path(id)) //nolint:gosec // path is derived from the store dir
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return "", fmt.Errorf("reading artefact: %w", err)
	}

	return string(content), nil
}

// Parse reads and parses an artefact document.
func (s *Store) Parse(id string) (artefact.Artefact, error) {
	raw, err := s.Read(id)
	if err != nil {
		return artefact.Artefact{}, err
	}

	return artefact.Parse(raw), nil
}

// Tasks returns the checklist tasks of an artefact.
func (s *Store) Tasks(id string) ([]artefact.Task, error) {
	raw, err := s.Read(id)
	if err != nil {
		return nil, err
	}

	return artefact.ExtractTasks(raw), nil
}

// mutate applies fn to the current raw document under the document lock and
// writes the result back atomically. fn runs on freshly-read content, so
// concurrent mutators serialize instead of clobbering each other. The
// transformation is pure text surgery on the full file, leaving every byte
// outside the edited span intact, frontmatter included.
func (s *Store) mutate(id string, fn func(raw string) (string, error)) error {
	path := s.Path(id)

	return withLock(path, func() error {
		raw, err := s.Read(id)
		if err != nil {
			return err
		}

		content, err := fn(raw)
		if err != nil {
			return err
		}

		writeErr := atomic.WriteFile(path, strings.NewReader(content))
		if writeErr != nil {
			return fmt.Errorf("writing artefact: %w", writeErr)
		}

		return nil
	})
}

// CompleteTask marks the checklist task with the given description complete.
// Returns artefact.ErrTaskNotFound when no pending task matches.
func (s *Store) CompleteTask(id, description string) error {
	return s.mutate(id, func(raw string) (string, error) {
		return artefact.MarkTaskComplete(raw, description)
	})
}

// AppendExecutionLog appends a timestamped entry to the artefact's Execution
// Log section, creating the section if needed.
func (s *Store) AppendExecutionLog(id, text string) error {
	entry := fmt.Sprintf("- %s: %s", s.now().UTC().Format(time.RFC3339), text)

	return s.mutate(id, func(raw string) (string, error) {
		return artefact.AppendExecutionLogEntry(raw, entry), nil
	})
}

// AppendMemoryTrace appends a fenced json:memory block to the artefact's
// Memory Trace section, creating the section if needed. A missing timestamp
// is filled from the store clock.
func (s *Store) AppendMemoryTrace(id string, entry artefact.MemoryTraceEntry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	block := artefact.FormatMemoryTrace(entry)

	return s.mutate(id, func(raw string) (string, error) {
		return artefact.AppendMemoryTrace(raw, block), nil
	})
}

// CreateLoopInput holds user-provided fields for a new loop document.
type CreateLoopInput struct {
	Title      string
	Phase      string
	Workstream string
	Purpose    string
}

// CreateLoop mints a uuid, builds the canonical loop skeleton with the
// defaults table applied, and writes it. Returns the new id and file path.
func (s *Store) CreateLoop(in CreateLoopInput) (string, string, error) {
	mkdirErr := os.MkdirAll(s.dir, dirPerms)
	if mkdirErr != nil {
		return "", "", fmt.Errorf("creating loop directory: %w", mkdirErr)
	}

	id := s.newID()
	path := s.Path(id)

	_, statErr := os.Stat(path)
	if statErr == nil {
		return "", "", fmt.Errorf("%w: %s", errFileExists, path)
	}

	meta := artefact.NewLoopMetadata(id, in.Title, in.Phase, in.Workstream, s.now())
	content := artefact.Encode(meta, artefact.NewLoopBody(in.Purpose))

	writeErr := atomic.WriteFile(path, strings.NewReader(content))
	if writeErr != nil {
		return "", "", fmt.Errorf("writing loop file: %w", writeErr)
	}

	chmodErr := os.Chmod(path, filePerms)
	if chmodErr != nil {
		return "", "", fmt.Errorf("setting loop file permissions: %w", chmodErr)
	}

	return id, path, nil
}

// ReadPlan returns the parsed workstream plan and its raw content. A missing
// plan file is an empty plan, not an error.
func (s *Store) ReadPlan() ([]plan.Task, string, error) {
	content, err := os.ReadFile(s.planPath) //nolint:gosec // path comes from config
	if os.IsNotExist(err) {
		return nil, "", nil
	}

	if err != nil {
		return nil, "", fmt.Errorf("reading plan: %w", err)
	}

	return plan.Parse(string(content)), string(content), nil
}

// SetPlanTaskStatus transitions the status of the plan task matching
// description and rewrites the plan. Returns plan.ErrTaskNotFound when no
// task matches.
func (s *Store) SetPlanTaskStatus(description, status string) error {
	return s.updatePlanTask(description, func(task *plan.Task) {
		task.Status = status
	})
}

func (s *Store) updatePlanTask(description string, apply func(*plan.Task)) error {
	return withLock(s.planPath, func() error {
		existing, readErr := os.ReadFile(s.planPath) //nolint:gosec // path comes from config
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return fmt.Errorf("%w: %q", plan.ErrTaskNotFound, description)
			}

			return fmt.Errorf("reading plan: %w", readErr)
		}

		tasks := plan.Parse(string(existing))

		idx, found := plan.Find(tasks, description)
		if !found {
			return fmt.Errorf("%w: %q", plan.ErrTaskNotFound, description)
		}

		apply(&tasks[idx])

		content := plan.Stringify(tasks, string(existing))

		writeErr := atomic.WriteFile(s.planPath, strings.NewReader(content))
		if writeErr != nil {
			return fmt.Errorf("writing plan: %w", writeErr)
		}

		return nil
	})
}

// PromotePlanTask promotes a plan task into a loop: the task is marked
// promoted with a reference to the loop, the loop gains a pending checklist
// line for it, and the loop's execution log records the provenance marker the
// extractor recognizes.
func (s *Store) PromotePlanTask(description, loopID string) error {
	// Verify the target exists before touching the plan.
	_, err := s.Read(loopID)
	if err != nil {
		return err
	}

	err = s.updatePlanTask(description, func(task *plan.Task) {
		task.Status = plan.StatusPromoted
		task.PromotedTo = loopID
	})
	if err != nil {
		return err
	}

	taskLine := strings.TrimSpace(description)

	err = s.mutate(loopID, func(raw string) (string, error) {
		return artefact.AppendTask(raw, taskLine), nil
	})
	if err != nil {
		return err
	}

	marker := fmt.Sprintf("Task promoted from workstream_plan.md: %q by ora", taskLine)

	return s.AppendExecutionLog(loopID, marker)
}
