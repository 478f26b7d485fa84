package quest

import (
	"fmt"
	"time"
)

// Record is the flat serializable form of a Quest, used for snapshot
// files, catalog definitions, and API payloads. Dependencies are emitted
// sorted and deduplicated; start_time is an RFC 3339 string or null.
type Record struct {
	ID                string           `json:"id" yaml:"id"`
	Title             string           `json:"title" yaml:"title"`
	Description       string           `json:"description" yaml:"description"`
	Dependencies      []string         `json:"dependencies" yaml:"dependencies"`
	Status            string           `json:"status" yaml:"status"`
	QuestType         string           `json:"quest_type" yaml:"quest_type"`
	Rewards           []map[string]any `json:"rewards" yaml:"rewards"`
	Consequences      []map[string]any `json:"consequences" yaml:"consequences"`
	FailureConditions []map[string]any `json:"failure_conditions" yaml:"failure_conditions"`
	StartTime         *string          `json:"start_time" yaml:"start_time"`
}

// ToRecord maps the quest to its serializable form.
func (q *Quest) ToRecord() Record {
	rec := Record{
		ID:                q.ID,
		Title:             q.Title,
		Description:       q.Description,
		Dependencies:      q.DependencyList(),
		Status:            string(q.Status),
		QuestType:         string(q.Type),
		Rewards:           cloneMetadata(q.Rewards),
		Consequences:      cloneMetadata(q.Consequences),
		FailureConditions: cloneMetadata(q.FailureConditions),
	}
	if q.StartTime != nil {
		formatted := q.StartTime.Format(time.RFC3339Nano)
		rec.StartTime = &formatted
	}
	return rec
}

// FromRecord builds a quest from its serializable form, re-validating
// every field with the same rules as construction. Absent optional
// fields take documented defaults: status NotStarted, quest_type Side,
// metadata lists empty, start_time unset. Unrecognized status or type
// values are a hard error, never coerced.
func FromRecord(rec Record) (*Quest, error) {
	q, err := NewQuest(rec.ID, rec.Title, rec.Description, rec.Dependencies)
	if err != nil {
		return nil, err
	}

	if rec.Status != "" {
		status, err := ParseStatus(rec.Status)
		if err != nil {
			return nil, fmt.Errorf("quest '%s': %w", rec.ID, err)
		}
		q.Status = status
	}

	if rec.QuestType != "" {
		questType, err := ParseType(rec.QuestType)
		if err != nil {
			return nil, fmt.Errorf("quest '%s': %w", rec.ID, err)
		}
		q.Type = questType
	}

	if rec.Rewards != nil {
		q.Rewards = cloneMetadata(rec.Rewards)
	}
	if rec.Consequences != nil {
		q.Consequences = cloneMetadata(rec.Consequences)
	}
	if rec.FailureConditions != nil {
		q.FailureConditions = cloneMetadata(rec.FailureConditions)
	}

	if rec.StartTime != nil {
		t, err := time.Parse(time.RFC3339Nano, *rec.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: quest '%s' has invalid start_time '%s'", ErrInvalidArgument, rec.ID, *rec.StartTime)
		}
		q.StartTime = &t
	}

	return q, nil
}
