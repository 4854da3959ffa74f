// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import (
	"encoding/json"
	"time"
)

// CreateUserRequest is the request body for registering a new user.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// CreateUserResponse is the response body after registering a user.
// ApiKey is returned exactly once.
type CreateUserResponse struct {
	ID     string `json:"user_id"`
	Name   string `json:"name"`
	ApiKey string `json:"api_key"`
}

// CreateSourceRequest is the request body for connecting a new source.
type CreateSourceRequest struct {
	Name        string            `json:"name"`
	URL         string            `json:"url"`
	SourceType  string            `json:"source_type"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// SourceResponse represents a source in API responses.
type SourceResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	SourceType string    `json:"source_type"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransformationFieldPayload is one selectable field of a transformation draft.
type TransformationFieldPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Selected bool    `json:"selected"`
	Alias    *string `json:"alias,omitempty"`
}

// DerivedColumnPayload is one derived column of a transformation draft.
type DerivedColumnPayload struct {
	Name        string  `json:"name"`
	Expression  string  `json:"expression"`
	Description *string `json:"description,omitempty"`
}

// TransformationPayload is the optional transformation half of a wizard snapshot.
type TransformationPayload struct {
	Name               string                       `json:"name"`
	SkipTransformation bool                         `json:"skip_transformation"`
	Fields             []TransformationFieldPayload `json:"fields"`
	DerivedColumns     []DerivedColumnPayload       `json:"derived_columns"`
}

// WizardSnapshotPayload mirrors the wizard form state. The whole snapshot is
// sent on every update so back-navigation never loses entered data.
type WizardSnapshotPayload struct {
	SourceID          string                 `json:"source_id"`
	ExtractionType    string                 `json:"extraction_type"`
	Name              string                 `json:"name"`
	TemplateName      string                 `json:"template_name"`
	DependentTemplate string                 `json:"dependent_template"`
	CustomQuery       string                 `json:"custom_query"`
	Transformation    *TransformationPayload `json:"transformation,omitempty"`
}

// WizardStateResponse describes an in-flight wizard session.
type WizardStateResponse struct {
	SessionID  string                `json:"session_id"`
	Step       string                `json:"step"`
	CanAdvance bool                  `json:"can_advance"`
	Snapshot   WizardSnapshotPayload `json:"snapshot"`
}

// WizardCommitResponse is returned when a wizard session commits.
type WizardCommitResponse struct {
	DatasetID        string  `json:"dataset_id"`
	TransformationID *string `json:"transformation_id,omitempty"`
}

// DatasetResponse represents a dataset in API responses.
type DatasetResponse struct {
	ID             string     `json:"id"`
	SourceID       string     `json:"source_id"`
	Name           string     `json:"name"`
	ExtractionType string     `json:"extraction_type"`
	TemplateName   *string    `json:"template_name,omitempty"`
	CustomQuery    *string    `json:"custom_query,omitempty"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	RecordCount    *int64     `json:"record_count,omitempty"`
	StatusMessage  *string    `json:"status_message,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DatasetResultRequest is the payload sent by the extraction worker
// when an extraction run finishes.
type DatasetResultRequest struct {
	Success     bool            `json:"success"`
	RecordCount int64           `json:"record_count,omitempty"`
	ResultData  json.RawMessage `json:"result_data,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// CreateJobRequest is the request body for scheduling a new job.
type CreateJobRequest struct {
	SourceID         string  `json:"source_id"`
	TransformationID *string `json:"transformation_id,omitempty"`
	DestinationID    *string `json:"destination_id,omitempty"`
	Frequency        string  `json:"frequency"`
}

// JobResponse represents a scheduled job in API responses.
type JobResponse struct {
	ID               string     `json:"id"`
	SourceID         string     `json:"source_id"`
	TransformationID *string    `json:"transformation_id,omitempty"`
	DestinationID    *string    `json:"destination_id,omitempty"`
	Frequency        string     `json:"frequency"`
	Schedule         string     `json:"schedule"`
	Status           string     `json:"status"`
	LastRun          *time.Time `json:"last_run,omitempty"`
	NextRun          *time.Time `json:"next_run,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// JobRunResponse represents one execution of a job.
type JobRunResponse struct {
	ID            string     `json:"id"`
	JobID         string     `json:"job_id"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RowsProcessed *int64     `json:"rows_processed,omitempty"`
	Error         *string    `json:"error,omitempty"`
}

// JobRunResultRequest is the payload sent by the execution worker
// when a job run finishes.
type JobRunResultRequest struct {
	Success       bool   `json:"success"`
	RowsProcessed *int64 `json:"rows_processed,omitempty"`
	Error         string `json:"error,omitempty"`
}

// NotificationResponse represents a lifecycle notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	RelatedID *string   `json:"related_id,omitempty"`
	Link      *string   `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
