package quest

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TransitionFunc receives lifecycle transitions after they commit.
// Hooks run outside the manager's lock.
type TransitionFunc func(questID string, from, to Status)

// Manager owns the quest collection keyed by ID, the derived set of
// completed IDs, and every lifecycle and graph operation. All state is
// guarded by a single lock; quests handed out are copies, so the only
// way to mutate a quest is through the transition operations here.
type Manager struct {
	mu        sync.RWMutex
	quests    map[string]*Quest
	completed map[string]bool

	onTransition TransitionFunc
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		quests:    make(map[string]*Quest),
		completed: make(map[string]bool),
	}
}

// SetTransitionHook registers a callback invoked after every committed
// status change (start, complete, fail, reset). No-op transitions such
// as re-completing a completed quest do not fire it.
func (m *Manager) SetTransitionHook(fn TransitionFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = fn
}

// Add registers a quest. The quest is copied on the way in, so the
// caller's instance stays detached from manager state. If the quest
// arrives already Completed (a load path), it is indexed as completed.
func (m *Manager) Add(q *Quest) error {
	if q == nil || q.ID == "" {
		return fmt.Errorf("%w: quest ID must be a non-empty string", ErrInvalidArgument)
	}
	for dep := range q.Dependencies {
		if dep == "" {
			return fmt.Errorf("%w: invalid dependency ID for quest '%s', must be a non-empty string", ErrInvalidArgument, q.ID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.quests[q.ID]; exists {
		return fmt.Errorf("quest with ID '%s' %w", q.ID, ErrAlreadyExists)
	}

	stored := q.Clone()
	m.quests[stored.ID] = stored
	if stored.Status == StatusCompleted {
		m.completed[stored.ID] = true
	}
	return nil
}

// Get returns a copy of the quest with the given ID.
func (m *Manager) Get(id string) (*Quest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, exists := m.quests[id]
	if !exists {
		return nil, false
	}
	return q.Clone(), true
}

// All returns copies of every quest, sorted by ID for deterministic
// listing.
func (m *Manager) All() []*Quest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	quests := make([]*Quest, 0, len(m.quests))
	for _, q := range m.quests {
		quests = append(quests, q.Clone())
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].ID < quests[j].ID })
	return quests
}

// Count returns the number of registered quests.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.quests)
}

// CompletedIDs returns the IDs of all completed quests, sorted.
func (m *Manager) CompletedIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.completed))
	for id := range m.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unlocked reports whether every dependency of the quest is completed.
func (m *Manager) Unlocked(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, exists := m.quests[id]
	if !exists {
		return false, fmt.Errorf("quest with ID '%s' %w", id, ErrNotFound)
	}
	return q.IsUnlocked(m.completed), nil
}

// Start transitions a quest from NotStarted to InProgress. The quest
// must exist, be in the NotStarted state, and have every dependency
// completed. Timed quests record their start timestamp.
func (m *Manager) Start(id string) error {
	m.mu.Lock()
	from, to, changed, err := m.startLocked(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		m.notify(id, from, to)
	}
	return nil
}

func (m *Manager) startLocked(id string) (Status, Status, bool, error) {
	q, exists := m.quests[id]
	if !exists {
		return "", "", false, fmt.Errorf("quest with ID '%s' %w, cannot start", id, ErrNotFound)
	}
	if q.Status != StatusNotStarted {
		return "", "", false, fmt.Errorf("%w: quest '%s' is not in '%s' state (current: '%s')",
			ErrPermissionDenied, id, StatusNotStarted, q.Status)
	}
	if unmet := m.unmetLocked(q); len(unmet) > 0 {
		return "", "", false, fmt.Errorf("%w: cannot start quest '%s', dependencies not met: %v",
			ErrPermissionDenied, id, unmet)
	}

	q.Status = StatusInProgress
	if q.Type == TypeTimed {
		q.SetStartTime(time.Now().UTC())
	}
	return StatusNotStarted, StatusInProgress, true, nil
}

// Complete transitions a quest from InProgress to Completed, re-checking
// dependencies first. Completing an already-Completed quest is a silent
// no-op; completing from any other state is a permission error.
func (m *Manager) Complete(id string) error {
	m.mu.Lock()
	from, to, changed, err := m.completeLocked(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		m.notify(id, from, to)
	}
	return nil
}

func (m *Manager) completeLocked(id string) (Status, Status, bool, error) {
	q, exists := m.quests[id]
	if !exists {
		return "", "", false, fmt.Errorf("quest with ID '%s' %w for completion", id, ErrNotFound)
	}
	if q.Status == StatusCompleted {
		return q.Status, q.Status, false, nil
	}
	if q.Status != StatusInProgress {
		return "", "", false, fmt.Errorf("%w: cannot complete quest '%s', current status: '%s' (expected '%s')",
			ErrPermissionDenied, id, q.Status, StatusInProgress)
	}
	if unmet := m.unmetLocked(q); len(unmet) > 0 {
		return "", "", false, fmt.Errorf("%w: cannot complete quest '%s', dependencies not met: %v",
			ErrPermissionDenied, id, unmet)
	}

	q.Status = StatusCompleted
	m.completed[id] = true
	return StatusInProgress, StatusCompleted, true, nil
}

// Fail transitions a quest from NotStarted or InProgress to Failed.
// Failing a Completed or already-Failed quest is a silent no-op; a
// completed quest keeps its place in the completed set.
func (m *Manager) Fail(id string) error {
	m.mu.Lock()
	from, to, changed, err := m.failLocked(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		m.notify(id, from, to)
	}
	return nil
}

func (m *Manager) failLocked(id string) (Status, Status, bool, error) {
	q, exists := m.quests[id]
	if !exists {
		return "", "", false, fmt.Errorf("quest with ID '%s' %w, cannot fail", id, ErrNotFound)
	}
	if q.Status == StatusCompleted || q.Status == StatusFailed {
		return q.Status, q.Status, false, nil
	}

	from := q.Status
	q.Status = StatusFailed
	delete(m.completed, id)
	return from, StatusFailed, true, nil
}

// Reset returns a Repeatable, Completed quest to NotStarted, clearing
// its start timestamp and its membership in the completed set.
func (m *Manager) Reset(id string) error {
	m.mu.Lock()
	from, to, changed, err := m.resetLocked(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		m.notify(id, from, to)
	}
	return nil
}

func (m *Manager) resetLocked(id string) (Status, Status, bool, error) {
	q, exists := m.quests[id]
	if !exists {
		return "", "", false, fmt.Errorf("quest with ID '%s' %w, cannot reset", id, ErrNotFound)
	}
	if q.Type != TypeRepeatable {
		return "", "", false, fmt.Errorf("%w: quest '%s' is not repeatable (type: '%s')",
			ErrPermissionDenied, id, q.Type)
	}
	if q.Status != StatusCompleted {
		return "", "", false, fmt.Errorf("%w: quest '%s' is not completed (current: '%s')",
			ErrPermissionDenied, id, q.Status)
	}

	q.Status = StatusNotStarted
	q.ClearStartTime()
	delete(m.completed, id)
	return StatusCompleted, StatusNotStarted, true, nil
}

// ListAvailable returns copies of every quest that is NotStarted and has
// all dependencies completed, ordered by title ascending with ties broken
// by ID.
func (m *Manager) ListAvailable() []*Quest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	available := make([]*Quest, 0)
	for _, q := range m.quests {
		if q.Status == StatusNotStarted && q.IsUnlocked(m.completed) {
			available = append(available, q.Clone())
		}
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].Title != available[j].Title {
			return available[i].Title < available[j].Title
		}
		return available[i].ID < available[j].ID
	})
	return available
}

// Clear removes every quest and completed-ID entry. Used by the test
// support endpoint and by full-replace loads.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quests = make(map[string]*Quest)
	m.completed = make(map[string]bool)
}

// unmetLocked returns the quest's unmet dependency IDs, sorted. Caller
// must hold the lock.
func (m *Manager) unmetLocked(q *Quest) []string {
	unmet := make([]string, 0)
	for dep := range q.Dependencies {
		if !m.completed[dep] {
			unmet = append(unmet, dep)
		}
	}
	sort.Strings(unmet)
	return unmet
}

func (m *Manager) notify(id string, from, to Status) {
	m.mu.RLock()
	fn := m.onTransition
	m.mu.RUnlock()
	if fn != nil {
		fn(id, from, to)
	}
}
