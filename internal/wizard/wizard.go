// Package wizard implements the step-sequenced dataset configuration flow:
// a finite-state stepper over an explicit form snapshot, guarded by pure
// validation rules. Nothing is persisted until Commit succeeds.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dataforge/internal/store"

	"github.com/google/uuid"
)

// Step identifies one wizard state. One step is active at a time.
type Step string

const (
	StepSource        Step = "source"
	StepType          Step = "type"
	StepConfiguration Step = "configuration"
	StepTemplates     Step = "templates"
	StepPreview       Step = "preview"
)

// stepOrder is the transition table: advance walks forward, retreat walks
// backward, advancing past the last step commits.
var stepOrder = []Step{StepSource, StepType, StepConfiguration, StepTemplates, StepPreview}

// TransformationDraft is the optional transformation half of the wizard
// form state.
type TransformationDraft struct {
	Name               string
	SkipTransformation bool
	Fields             []store.TransformationField
	DerivedColumns     []store.DerivedColumn
}

// Snapshot is the explicit wizard form state, passed by value between the
// guard functions. It retains every entered field across back/forward
// navigation.
type Snapshot struct {
	SourceID          string
	ExtractionType    store.ExtractionType
	Name              string
	TemplateName      string
	DependentTemplate string
	CustomQuery       string
	Transformation    *TransformationDraft
}

// Committer is the narrow repository surface the wizard needs at commit
// time.
type Committer interface {
	GetSourceByID(ctx context.Context, id uuid.UUID) (*store.Source, error)
	CreateDataset(ctx context.Context, tx store.DBTransaction, dataset *store.Dataset) error
	CreateTransformation(ctx context.Context, tx store.DBTransaction, tr *store.Transformation) error
}

// CommitResult names the entities a successful commit created.
type CommitResult struct {
	DatasetID        uuid.UUID
	TransformationID *uuid.UUID
}

// Controller sequences a single wizard session. It is not safe for
// concurrent use; callers serialize access per session.
type Controller struct {
	ownerID   uuid.UUID
	idx       int
	snap      Snapshot
	committed bool
	now       func() time.Time
}

// New creates a wizard controller at the first step with an empty snapshot.
func New(ownerID uuid.UUID) *Controller {
	return &Controller{
		ownerID: ownerID,
		now:     time.Now,
	}
}

// Step returns the active step.
func (c *Controller) Step() Step {
	return stepOrder[c.idx]
}

// Snapshot returns a copy of the accumulated form state.
func (c *Controller) Snapshot() Snapshot {
	return c.snap
}

// Apply replaces the form state. The step does not move; entered data for
// other steps is retained because the whole snapshot is swapped at once.
func (c *Controller) Apply(snap Snapshot) {
	c.snap = snap
}

// CanAdvance reports whether the active step's guard passes.
func (c *Controller) CanAdvance() bool {
	return CanAdvance(c.Step(), c.snap)
}

// Advance moves to the next step if the active step's guard passes.
// Advancing past the preview step triggers Commit; the returned result is
// non-nil only in that case.
func (c *Controller) Advance(ctx context.Context, repo Committer) (*CommitResult, error) {
	if c.committed {
		return nil, &store.StateConflictError{Entity: "wizard", State: "committed", Op: "advance"}
	}
	if !c.CanAdvance() {
		return nil, &store.ValidationError{Reason: fmt.Sprintf("step %q is incomplete", c.Step())}
	}
	if c.idx == len(stepOrder)-1 {
		return c.Commit(ctx, repo)
	}
	c.idx++
	return nil, nil
}

// Retreat returns to the previous step without discarding entered data.
func (c *Controller) Retreat() error {
	if c.idx == 0 {
		return &store.StateConflictError{Entity: "wizard", State: string(c.Step()), Op: "retreat"}
	}
	c.idx--
	return nil
}

// Commit assembles the dataset and, when the flow configured one, the
// transformation, and creates them as one logical unit of work. Every step
// guard is re-checked before any repository call. A vanished source is a
// NotFound failure, not a crash, and forces the session back to the source
// step. If the transformation create fails after the dataset create
// succeeded, the error is a PartialCommitError naming the created dataset.
func (c *Controller) Commit(ctx context.Context, repo Committer) (*CommitResult, error) {
	if c.committed {
		return nil, &store.StateConflictError{Entity: "wizard", State: "committed", Op: "commit"}
	}

	for _, step := range stepOrder {
		if !CanAdvance(step, c.snap) {
			return nil, &store.ValidationError{Reason: fmt.Sprintf("step %q is incomplete", step)}
		}
	}

	if c.snap.Transformation != nil {
		t := c.snap.Transformation
		if err := ValidateTransformation(t.SkipTransformation, t.Fields, t.DerivedColumns); err != nil {
			return nil, err
		}
	}

	sourceID, err := uuid.Parse(c.snap.SourceID)
	if err != nil {
		return nil, &store.ValidationError{Reason: "selected source id is not a valid uuid"}
	}

	// The source list the caller loaded may be stale; treat a vanished or
	// soft-deleted source as NotFound and force the session back. A lookup
	// that fails for any other reason is a store failure: the caller may
	// retry, so the step position is kept.
	src, err := repo.GetSourceByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.idx = 0
			return nil, fmt.Errorf("source %s: %w", sourceID, store.ErrNotFound)
		}
		return nil, &store.StoreError{Op: "get source", Err: err}
	}
	if src.IsDeleted {
		c.idx = 0
		return nil, fmt.Errorf("source %s: %w", sourceID, store.ErrNotFound)
	}

	dataset := c.buildDataset(sourceID)
	if err := repo.CreateDataset(ctx, nil, dataset); err != nil {
		return nil, &store.StoreError{Op: "create dataset", Err: err}
	}

	result := &CommitResult{DatasetID: dataset.ID}

	if c.snap.Transformation != nil {
		tr := c.buildTransformation(sourceID)
		if err := repo.CreateTransformation(ctx, nil, tr); err != nil {
			return nil, &store.PartialCommitError{DatasetID: dataset.ID, Err: err}
		}
		result.TransformationID = &tr.ID
	}

	c.committed = true
	return result, nil
}

func (c *Controller) buildDataset(sourceID uuid.UUID) *store.Dataset {
	dataset := &store.Dataset{
		ID:             uuid.New(),
		OwnerID:        c.ownerID,
		SourceID:       sourceID,
		Name:           c.snap.Name,
		ExtractionType: c.snap.ExtractionType,
		Status:         store.DatasetStatusPending,
		CreatedAt:      c.now().UTC(),
	}

	// Exactly one of template_name / custom_query is populated.
	switch c.snap.ExtractionType {
	case store.ExtractionPredefined:
		name := c.snap.TemplateName
		dataset.TemplateName = &name
	case store.ExtractionDependent:
		name := c.snap.DependentTemplate
		dataset.TemplateName = &name
	case store.ExtractionCustom:
		query := c.snap.CustomQuery
		dataset.CustomQuery = &query
	}
	return dataset
}

func (c *Controller) buildTransformation(sourceID uuid.UUID) *store.Transformation {
	t := c.snap.Transformation
	name := t.Name
	if name == "" {
		name = c.snap.Name
	}
	return &store.Transformation{
		ID:                 uuid.New(),
		OwnerID:            c.ownerID,
		SourceID:           sourceID,
		Name:               name,
		Status:             store.TransformationStatusActive,
		SkipTransformation: t.SkipTransformation,
		Fields:             t.Fields,
		DerivedColumns:     t.DerivedColumns,
		CreatedAt:          c.now().UTC(),
	}
}
