package quest

import (
	"fmt"
	"sort"
	"time"
)

// Status represents where a quest sits in its lifecycle
type Status string

const (
	StatusNotStarted Status = "not_started" // created but never started
	StatusInProgress Status = "in_progress" // started, not yet resolved
	StatusCompleted  Status = "completed"   // finished successfully
	StatusFailed     Status = "failed"      // abandoned or failed
)

// Type classifies a quest. Only Repeatable quests may be reset after
// completion, and only Timed quests record a start timestamp.
type Type string

const (
	TypeMain       Type = "main"
	TypeSide       Type = "side"
	TypeOptional   Type = "optional"
	TypeRepeatable Type = "repeatable"
	TypeTimed      Type = "timed"
)

// ParseStatus validates a wire-format status string.
// Unknown values are a hard error, never coerced to a default.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown quest status '%s'", ErrInvalidArgument, s)
}

// ParseType validates a wire-format quest type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeMain, TypeSide, TypeOptional, TypeRepeatable, TypeTimed:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: unknown quest type '%s'", ErrInvalidArgument, s)
}

// Quest is one unit of trackable work: its identity, prerequisites,
// lifecycle status, and opaque metadata. Mutate it only through the
// manager's transition operations; the setters here enforce field
// validity but not transition legality.
type Quest struct {
	ID          string
	Title       string
	Description string

	// Dependencies holds the IDs of quests that must be completed before
	// this one may be started. IDs not known to the manager are tolerated
	// (dangling) but block unlock until added and completed.
	Dependencies map[string]bool

	Status Status
	Type   Type

	// Rewards, Consequences, and FailureConditions are opaque metadata
	// passed through unchanged. The engine never interprets them.
	Rewards           []map[string]any
	Consequences      []map[string]any
	FailureConditions []map[string]any

	// StartTime is set when a Timed quest transitions to InProgress and
	// cleared on reset. Nil for quests that have never been timed-started.
	StartTime *time.Time
}

// NewQuest creates a quest in the NotStarted state with the default Side
// type. Dependencies are deduplicated; each must be a non-empty string.
func NewQuest(id, title, description string, dependencies []string) (*Quest, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: quest ID must be a non-empty string", ErrInvalidArgument)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: quest title must be a non-empty string", ErrInvalidArgument)
	}

	deps := make(map[string]bool, len(dependencies))
	for _, dep := range dependencies {
		if dep == "" {
			return nil, fmt.Errorf("%w: dependency ID for quest '%s' must be a non-empty string", ErrInvalidArgument, id)
		}
		deps[dep] = true
	}

	return &Quest{
		ID:                id,
		Title:             title,
		Description:       description,
		Dependencies:      deps,
		Status:            StatusNotStarted,
		Type:              TypeSide,
		Rewards:           []map[string]any{},
		Consequences:      []map[string]any{},
		FailureConditions: []map[string]any{},
	}, nil
}

// IsUnlocked reports whether every dependency ID is in the completed set.
// A quest with no dependencies is always unlocked.
func (q *Quest) IsUnlocked(completedIDs map[string]bool) bool {
	for dep := range q.Dependencies {
		if !completedIDs[dep] {
			return false
		}
	}
	return true
}

// UpdateStatus overwrites the status unconditionally. Transition legality
// is the manager's responsibility; this only rejects unknown variants.
func (q *Quest) UpdateStatus(status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	q.Status = status
	return nil
}

// SetStartTime records when the quest was started.
func (q *Quest) SetStartTime(t time.Time) {
	q.StartTime = &t
}

// ClearStartTime removes the recorded start timestamp.
func (q *Quest) ClearStartTime() {
	q.StartTime = nil
}

// AddDependency adds a prerequisite quest ID.
func (q *Quest) AddDependency(id string) error {
	if id == "" {
		return fmt.Errorf("%w: dependency ID must be a non-empty string", ErrInvalidArgument)
	}
	q.Dependencies[id] = true
	return nil
}

// RemoveDependency removes a prerequisite quest ID if present.
func (q *Quest) RemoveDependency(id string) {
	delete(q.Dependencies, id)
}

// DependencyList returns the dependency IDs sorted ascending.
func (q *Quest) DependencyList() []string {
	deps := make([]string, 0, len(q.Dependencies))
	for dep := range q.Dependencies {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// Clone returns an independent copy of the quest. The dependency set and
// metadata lists are copied so mutations on the clone never reach the
// manager's instance.
func (q *Quest) Clone() *Quest {
	clone := *q

	clone.Dependencies = make(map[string]bool, len(q.Dependencies))
	for dep := range q.Dependencies {
		clone.Dependencies[dep] = true
	}

	clone.Rewards = cloneMetadata(q.Rewards)
	clone.Consequences = cloneMetadata(q.Consequences)
	clone.FailureConditions = cloneMetadata(q.FailureConditions)

	if q.StartTime != nil {
		t := *q.StartTime
		clone.StartTime = &t
	}

	return &clone
}

func cloneMetadata(entries []map[string]any) []map[string]any {
	cloned := make([]map[string]any, len(entries))
	for i, entry := range entries {
		m := make(map[string]any, len(entry))
		for k, v := range entry {
			m[k] = v
		}
		cloned[i] = m
	}
	return cloned
}

func (q *Quest) String() string {
	deps := ""
	if len(q.Dependencies) > 0 {
		deps = fmt.Sprintf(", depends_on=%v", q.DependencyList())
	}
	return fmt.Sprintf("<%s: %q [%s]%s>", q.ID, q.Title, q.Status, deps)
}
