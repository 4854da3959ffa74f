// Package store contains the database layer for dataforge.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a registered owner of datasets, transformations and jobs.
// All list/get operations must be scoped by OwnerID.
type User struct {
	ID             uuid.UUID
	Name           string
	RateLimit      int
	RateLimitBurst int
	CreatedAt      time.Time
}

// SoftDeleteFields is the shared soft-delete shape carried by Source,
// Dataset and Job. A soft-deleted entity is invisible to normal queries
// until it is restored or purged.
type SoftDeleteFields struct {
	IsDeleted        bool
	DeletionMarkedAt *time.Time
}

// SourceStatus represents the state of a connected source.
type SourceStatus string

const (
	SourceStatusActive   SourceStatus = "active"
	SourceStatusInactive SourceStatus = "inactive"
	SourceStatusPending  SourceStatus = "pending"
	SourceStatusFailed   SourceStatus = "failed"
)

// Source represents a connected upstream system. It is shared by reference
// from datasets, transformations and jobs, never owned by them.
type Source struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	URL         string
	SourceType  string
	Status      SourceStatus
	Credentials map[string]string
	SoftDeleteFields
	CreatedAt time.Time
}

// ExtractionType selects how a dataset pulls data from its source.
type ExtractionType string

const (
	ExtractionPredefined ExtractionType = "predefined"
	ExtractionDependent  ExtractionType = "dependent"
	ExtractionCustom     ExtractionType = "custom"
)

// DatasetStatus represents the state of a dataset extraction run.
type DatasetStatus string

const (
	DatasetStatusPending   DatasetStatus = "pending"
	DatasetStatusRunning   DatasetStatus = "running"
	DatasetStatusCompleted DatasetStatus = "completed"
	DatasetStatusFailed    DatasetStatus = "failed"
)

// Dataset is an extraction definition bound to exactly one source.
// SourceID is immutable once created. Exactly one of TemplateName and
// CustomQuery is populated, selected by ExtractionType.
type Dataset struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	SourceID       uuid.UUID
	Name           string
	ExtractionType ExtractionType
	TemplateName   *string
	CustomQuery    *string
	Status         DatasetStatus
	Progress       int
	RecordCount    *int64
	ResultData     json.RawMessage
	StatusMessage  *string
	CompletedAt    *time.Time
	SoftDeleteFields
	CreatedAt time.Time
}

// TransformationStatus represents the state of a transformation rule set.
type TransformationStatus string

const (
	TransformationStatusActive     TransformationStatus = "active"
	TransformationStatusInactive   TransformationStatus = "inactive"
	TransformationStatusProcessing TransformationStatus = "processing"
	TransformationStatusFailed     TransformationStatus = "failed"
)

// TransformationField is one selectable field of a transformation.
type TransformationField struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Selected bool    `json:"selected"`
	Alias    *string `json:"alias,omitempty"`
}

// DerivedColumn is a computed column added by a transformation.
// Expression content is free text; only non-emptiness is enforced.
type DerivedColumn struct {
	Name        string  `json:"name"`
	Expression  string  `json:"expression"`
	Description *string `json:"description,omitempty"`
}

// Transformation is a field-selection and derived-column rule set bound to
// one source. If SkipTransformation is false, at least one field must be
// selected.
type Transformation struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	SourceID           uuid.UUID
	Name               string
	Status             TransformationStatus
	SkipTransformation bool
	Fields             []TransformationField
	DerivedColumns     []DerivedColumn
	CreatedAt          time.Time
}

// Frequency is the recurrence class of a job.
type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// JobStatus represents the scheduling state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusPaused    JobStatus = "paused"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is a schedule binding a source, an optional transformation, an
// optional destination and a frequency. Schedule holds the derived
// cron-like representation of Frequency.
type Job struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	SourceID         uuid.UUID
	TransformationID *uuid.UUID
	DestinationID    *uuid.UUID
	Frequency        Frequency
	Schedule         string
	LastRun          *time.Time
	NextRun          *time.Time
	Status           JobStatus
	SoftDeleteFields
	CreatedAt time.Time
}

// RunStatus represents the state of a single job execution.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// JobRun is an immutable execution record of a job. It is created when a
// job triggers and completed exactly once by the execution worker.
type JobRun struct {
	ID            uuid.UUID
	JobID         uuid.UUID
	Status        RunStatus
	StartedAt     time.Time
	CompletedAt   *time.Time
	RowsProcessed *int64
	ErrorMessage  *string
}

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category names the entity type a notification relates to.
type Category string

const (
	CategoryJob            Category = "job"
	CategoryTransformation Category = "transformation"
	CategorySource         Category = "source"
	CategoryDestination    Category = "destination"
	CategorySystem         Category = "system"
	CategoryExport         Category = "export"
)

// Notification is a fire-and-forget event record produced by lifecycle
// transitions. Old notifications are removed by time-based cleanup.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Severity  Severity
	Category  Category
	Message   string
	Read      bool
	RelatedID *uuid.UUID
	Link      *string
	CreatedAt time.Time
}

// EntityType names the entity kinds that share the soft-delete cycle.
type EntityType string

const (
	EntitySource  EntityType = "source"
	EntityDataset EntityType = "dataset"
	EntityJob     EntityType = "job"
)

// Category returns the notification category matching the entity type.
func (t EntityType) Category() Category {
	switch t {
	case EntitySource:
		return CategorySource
	case EntityDataset:
		return CategoryExport
	case EntityJob:
		return CategoryJob
	default:
		return CategorySystem
	}
}

// EntityRef identifies one soft-deletable entity.
type EntityRef struct {
	Type EntityType
	ID   uuid.UUID
}

// EntityLifecycle is the lifecycle view of a soft-deletable entity,
// independent of its concrete type.
type EntityLifecycle struct {
	OwnerID uuid.UUID
	SoftDeleteFields
}
