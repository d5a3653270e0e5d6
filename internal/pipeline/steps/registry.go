// Package steps defines the per-company stages of a scan run and the order in
// which a company may move through them.
package steps

import (
	"fmt"
)

// Stage is one state of a company within a run.
type Stage string

const (
	LinkCollected     Stage = "link_collected"
	DetailExtracted   Stage = "detail_extracted"
	WebsiteResolved   Stage = "website_resolved"
	GateChecked       Stage = "gate_checked"
	ClassifiedNoRole  Stage = "classified_no_role"
	ClassifiedRoleFit Stage = "classified_role_fit"
	PeopleResolved    Stage = "people_resolved"
	DraftComposed     Stage = "draft_composed"
	Persisted         Stage = "persisted"
)

// Stage categories
const (
	CategoryExtraction  = "extraction"
	CategoryGating      = "gating"
	CategoryEnrichment  = "enrichment"
	CategoryPersistence = "persistence"
)

// StageDefinition defines metadata for a stage
type StageDefinition struct {
	Name     Stage
	Category string
	// After is the stage a company must be in to enter this one.
	After    Stage
	Terminal bool
}

// StageRegistry holds all stage definitions
var StageRegistry = map[Stage]StageDefinition{
	LinkCollected: {
		Name:     LinkCollected,
		Category: CategoryExtraction,
	},
	DetailExtracted: {
		Name:     DetailExtracted,
		Category: CategoryExtraction,
		After:    LinkCollected,
	},
	WebsiteResolved: {
		Name:     WebsiteResolved,
		Category: CategoryExtraction,
		After:    DetailExtracted,
	},
	GateChecked: {
		Name:     GateChecked,
		Category: CategoryGating,
		After:    WebsiteResolved,
	},
	ClassifiedNoRole: {
		Name:     ClassifiedNoRole,
		Category: CategoryGating,
		After:    GateChecked,
		Terminal: true,
	},
	ClassifiedRoleFit: {
		Name:     ClassifiedRoleFit,
		Category: CategoryGating,
		After:    GateChecked,
	},
	PeopleResolved: {
		Name:     PeopleResolved,
		Category: CategoryEnrichment,
		After:    ClassifiedRoleFit,
	},
	DraftComposed: {
		Name:     DraftComposed,
		Category: CategoryEnrichment,
		After:    PeopleResolved,
	},
	Persisted: {
		Name:     Persisted,
		Category: CategoryPersistence,
		After:    DraftComposed,
		Terminal: true,
	},
}

// TransitionError represents a stage entered out of order
type TransitionError struct {
	From Stage
	To   Stage
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("invalid transition: cannot start at %s", e.To)
	}
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// ValidateTransition checks that a company in stage from may enter stage to.
// An empty from means the company has not entered any stage yet.
func ValidateTransition(from, to Stage) error {
	def, ok := StageRegistry[to]
	if !ok {
		return fmt.Errorf("unknown stage: %s", to)
	}
	if from != "" {
		if cur, ok := StageRegistry[from]; ok && cur.Terminal {
			return &TransitionError{From: from, To: to}
		}
	}
	if def.After != from {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// Trace records the stages one company passed through.
type Trace struct {
	stages []Stage
}

// Advance moves the trace to stage to.
func (t *Trace) Advance(to Stage) error {
	if err := ValidateTransition(t.Current(), to); err != nil {
		return err
	}
	t.stages = append(t.stages, to)
	return nil
}

// Current returns the latest stage, or "" before the first Advance.
func (t *Trace) Current() Stage {
	if len(t.stages) == 0 {
		return ""
	}
	return t.stages[len(t.stages)-1]
}

// Stages returns the stages entered so far, in order.
func (t *Trace) Stages() []Stage {
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Done reports whether the trace ended in a terminal stage.
func (t *Trace) Done() bool {
	def, ok := StageRegistry[t.Current()]
	return ok && def.Terminal
}
