package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dataforge/pkg/api"
)

// APIClient handles API calls to the dataforge server.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a new client with the given base URL and token.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do sends a request with auth headers and decodes the response into out.
// A nil out skips decoding (204 responses).
func (c *APIClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateSource sends POST /sources to connect a new source.
func (c *APIClient) CreateSource(req api.CreateSourceRequest) (*api.SourceResponse, error) {
	var result api.SourceResponse
	if err := c.do(http.MethodPost, "/sources", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSources sends GET /sources.
func (c *APIClient) ListSources(includeDeleted bool) ([]api.SourceResponse, error) {
	path := "/sources"
	if includeDeleted {
		path += "?deleted=true"
	}
	var result []api.SourceResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDatasets sends GET /datasets.
func (c *APIClient) ListDatasets(includeDeleted bool) ([]api.DatasetResponse, error) {
	path := "/datasets"
	if includeDeleted {
		path += "?deleted=true"
	}
	var result []api.DatasetResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetDataset sends GET /datasets/{id}.
func (c *APIClient) GetDataset(datasetID string) (*api.DatasetResponse, error) {
	var result api.DatasetResponse
	if err := c.do(http.MethodGet, "/datasets/"+datasetID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RunDataset sends POST /datasets/{id}/run to start an extraction.
func (c *APIClient) RunDataset(datasetID string) (*api.DatasetResponse, error) {
	var result api.DatasetResponse
	if err := c.do(http.MethodPost, "/datasets/"+datasetID+"/run", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateJob sends POST /jobs to schedule a new job.
func (c *APIClient) CreateJob(req api.CreateJobRequest) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPost, "/jobs", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs sends GET /jobs.
func (c *APIClient) ListJobs(includeDeleted bool) ([]api.JobResponse, error) {
	path := "/jobs"
	if includeDeleted {
		path += "?deleted=true"
	}
	var result []api.JobResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ToggleJob sends POST /jobs/{id}/toggle to flip a job between active and paused.
func (c *APIClient) ToggleJob(jobID string) (*api.JobResponse, error) {
	var result api.JobResponse
	if err := c.do(http.MethodPost, "/jobs/"+jobID+"/toggle", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TriggerJob sends POST /jobs/{id}/trigger to start a run now.
func (c *APIClient) TriggerJob(jobID string) (*api.JobRunResponse, error) {
	var result api.JobRunResponse
	if err := c.do(http.MethodPost, "/jobs/"+jobID+"/trigger", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobRuns sends GET /jobs/{id}/runs.
func (c *APIClient) ListJobRuns(jobID string, limit int) ([]api.JobRunResponse, error) {
	path := fmt.Sprintf("/jobs/%s/runs?limit=%d", jobID, limit)
	var result []api.JobRunResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteEntity sends DELETE /{kind}/{id} to move an entity to the trash.
func (c *APIClient) DeleteEntity(kind, id string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/%s/%s", kind, id), nil, nil)
}

// RestoreEntity sends POST /{kind}/{id}/restore to bring an entity back.
func (c *APIClient) RestoreEntity(kind, id string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/%s/%s/restore", kind, id), nil, nil)
}

// PurgeEntity sends DELETE /{kind}/{id}/purge to remove a trashed entity for good.
func (c *APIClient) PurgeEntity(kind, id string) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/%s/%s/purge", kind, id), nil, nil)
}

// ListNotifications sends GET /notifications.
func (c *APIClient) ListNotifications(unreadOnly bool) ([]api.NotificationResponse, error) {
	path := "/notifications"
	if unreadOnly {
		path += "?unread=true"
	}
	var result []api.NotificationResponse
	if err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkNotificationRead sends POST /notifications/{id}/read.
func (c *APIClient) MarkNotificationRead(id string) error {
	return c.do(http.MethodPost, "/notifications/"+id+"/read", nil, nil)
}
