// Package client implements the HTTP side of the wizard: project/job creation
// and the dataset collaborator endpoints. Every call performs exactly one
// outbound request; retries are the caller's decision, as a fresh call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/weave-labs/promptwizard/config"
	"github.com/weave-labs/promptwizard/utils"
	"github.com/weave-labs/promptwizard/wizard"
)

// APIError is returned for non-2xx responses and server-reported failures.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// SubmissionClient turns a validated form into a project-creation request.
type SubmissionClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     utils.Logger
}

// NewSubmissionClient builds a client from the service configuration. The
// rate limiter spaces submissions by cfg.SubmitInterval as a guard against
// accidental double-submits; it delays, it does not drop.
func NewSubmissionClient(cfg *config.Config, logger utils.Logger) *SubmissionClient {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelWarn)
	}
	return &SubmissionClient{
		baseURL:    cfg.APIBase,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.SubmitInterval), 1),
		logger:     logger,
	}
}

// CreateProjectResult is the successful outcome of a submission. JobID keys
// the optimization stream; ActualName may differ from RequestedName when the
// server renamed a colliding project.
type CreateProjectResult struct {
	JobID         string
	ActualName    string
	RequestedName string
	ProjectPath   string
	Message       string
}

type createProjectRequest struct {
	WizardData  *wizard.FormData `json:"wizardData"`
	ProjectName string           `json:"projectName"`
}

type createProjectResponse struct {
	Success              bool   `json:"success"`
	ActualProjectName    string `json:"actualProjectName"`
	RequestedProjectName string `json:"requestedProjectName"`
	ProjectPath          string `json:"projectPath"`
	Message              string `json:"message"`
	Error                string `json:"error"`
}

// CreateProject performs the single job-creation request. Network failure,
// a non-2xx status, or a server-reported failure body all surface as errors;
// nothing is retried.
func (c *SubmissionClient) CreateProject(ctx context.Context, fd *wizard.FormData, requestedName string) (*CreateProjectResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("submission cancelled while rate limited: %w", err)
	}

	body, err := json.Marshal(createProjectRequest{
		WizardData:  fd,
		ProjectName: requestedName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode project request: %w", err)
	}

	url := c.baseURL + "/create-project"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build project request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("submitting project", "name", requestedName, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: "project creation request failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(payload)}
	}

	var decoded createProjectResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = "server rejected the project"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	result := &CreateProjectResult{
		// The executor keys optimization jobs by the project name it actually
		// created, so the actual name doubles as the job identifier.
		JobID:         decoded.ActualProjectName,
		ActualName:    decoded.ActualProjectName,
		RequestedName: decoded.RequestedProjectName,
		ProjectPath:   decoded.ProjectPath,
		Message:       decoded.Message,
	}
	c.logger.Info("project created", "job_id", result.JobID, "requested_name", requestedName)
	return result, nil
}

// serverMessage extracts a server-provided error message from a failure body,
// falling back to a generic one.
func serverMessage(payload []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "request failed"
}
