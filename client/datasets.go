package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/weave-labs/promptwizard/config"
	"github.com/weave-labs/promptwizard/utils"
	"github.com/weave-labs/promptwizard/wizard"
)

// DatasetClient talks to the dataset collaborator service: upload, listing,
// field analysis, and transformation preview.
type DatasetClient struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	logger       utils.Logger
}

func NewDatasetClient(cfg *config.Config, logger utils.Logger) *DatasetClient {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelWarn)
	}
	return &DatasetClient{
		baseURL:      cfg.APIBase,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		logger:       logger,
	}
}

// DatasetInfo describes one uploaded dataset.
type DatasetInfo struct {
	Filename     string           `json:"filename"`
	TotalRecords int              `json:"total_records"`
	Preview      []map[string]any `json:"preview,omitempty"`
}

// FieldInfo describes one field discovered by dataset analysis.
type FieldInfo struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Samples        []any   `json:"samples"`
	Coverage       float64 `json:"coverage"`
	PopulatedCount int     `json:"populated_count"`
	TotalCount     int     `json:"total_count"`
}

// DatasetAnalysis is the field inventory of a dataset.
type DatasetAnalysis struct {
	TotalRecords int         `json:"total_records"`
	Fields       []FieldInfo `json:"fields"`
	Error        string      `json:"error,omitempty"`
}

// TransformationPreview shows rows before and after field-mapping.
type TransformationPreview struct {
	OriginalData    []map[string]any `json:"original_data"`
	TransformedData []map[string]any `json:"transformed_data"`
	AdapterConfig   map[string]any   `json:"adapter_config"`
	Error           string           `json:"error,omitempty"`
}

// Upload sends the dataset file as multipart form data and returns the
// server's record count and preview.
func (c *DatasetClient) Upload(ctx context.Context, filename string, r io.Reader) (*DatasetInfo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/datasets/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading dataset", "filename", filename)

	var info DatasetInfo
	if err := c.do(c.uploadClient, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// List returns the uploaded datasets.
func (c *DatasetClient) List(ctx context.Context) ([]DatasetInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/datasets", nil)
	if err != nil {
		return nil, err
	}
	var datasets []DatasetInfo
	if err := c.do(c.httpClient, req, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// Delete removes an uploaded dataset.
func (c *DatasetClient) Delete(ctx context.Context, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/api/datasets/"+url.PathEscape(filename), nil)
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, nil)
}

// Analyze returns the dataset's field inventory.
func (c *DatasetClient) Analyze(ctx context.Context, filename string) (*DatasetAnalysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/datasets/analyze/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, err
	}
	var analysis DatasetAnalysis
	if err := c.do(c.httpClient, req, &analysis); err != nil {
		return nil, err
	}
	if analysis.Error != "" {
		return nil, &APIError{Message: analysis.Error}
	}
	return &analysis, nil
}

type previewRequest struct {
	Filename string            `json:"filename"`
	Mappings map[string]string `json:"mappings"`
	UseCase  wizard.UseCase    `json:"use_case"`
}

// PreviewTransformation shows how the field mappings reshape the dataset for
// the given use case.
func (c *DatasetClient) PreviewTransformation(ctx context.Context, filename string, mappings map[string]string, useCase wizard.UseCase) (*TransformationPreview, error) {
	body, err := json.Marshal(previewRequest{
		Filename: filename,
		Mappings: mappings,
		UseCase:  useCase,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/datasets/preview-transformation", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var preview TransformationPreview
	if err := c.do(c.httpClient, req, &preview); err != nil {
		return nil, err
	}
	if preview.Error != "" {
		return nil, &APIError{Message: preview.Error}
	}
	return &preview, nil
}

// do performs one request and decodes a 2xx JSON body into out (skipped when
// out is nil).
func (c *DatasetClient) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return &APIError{Message: "dataset request failed", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(payload)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}
