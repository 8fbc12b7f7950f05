package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/promptwizard/config"
	"github.com/weave-labs/promptwizard/utils"
	"github.com/weave-labs/promptwizard/wizard"
)

func testConfig(serverURL string) *config.Config {
	cfg := config.NewConfig()
	cfg.APIBase = serverURL
	cfg.SubmitInterval = time.Millisecond
	return cfg
}

func TestCreateProjectSuccess(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create-project", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"success":              true,
			"actualProjectName":    "my-project-2",
			"requestedProjectName": "my-project",
			"projectPath":          "/projects/my-project-2",
			"message":              "created",
		})
	}))
	defer server.Close()

	c := NewSubmissionClient(testConfig(server.URL), utils.NewMockLogger())
	fd := wizard.NewFormData()
	fd.Prompt = "optimize me"

	result, err := c.CreateProject(context.Background(), fd, "my-project")
	require.NoError(t, err)
	assert.Equal(t, "my-project-2", result.JobID)
	assert.Equal(t, "my-project-2", result.ActualName)
	assert.Equal(t, "my-project", result.RequestedName)

	assert.Equal(t, "my-project", captured["projectName"])
	wizardData, ok := captured["wizardData"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "optimize me", wizardData["prompt"])
}

func TestCreateProjectServerReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "project name contains invalid characters",
		})
	}))
	defer server.Close()

	c := NewSubmissionClient(testConfig(server.URL), utils.NewMockLogger())
	_, err := c.CreateProject(context.Background(), wizard.NewFormData(), "bad/name")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "project name contains invalid characters", apiErr.Message)
}

func TestCreateProjectNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"backend unavailable"}`, http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewSubmissionClient(testConfig(server.URL), utils.NewMockLogger())
	_, err := c.CreateProject(context.Background(), wizard.NewFormData(), "p")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "backend unavailable", apiErr.Message)
}

func TestCreateProjectMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewSubmissionClient(testConfig(server.URL), utils.NewMockLogger())
	_, err := c.CreateProject(context.Background(), wizard.NewFormData(), "p")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "malformed response body", apiErr.Message)
}

func TestCreateProjectNetworkFailure(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	c := NewSubmissionClient(cfg, utils.NewMockLogger())
	_, err := c.CreateProject(context.Background(), wizard.NewFormData(), "p")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.NotNil(t, apiErr.Unwrap())
}

func TestDatasetUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/datasets/upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "qa.jsonl", header.Filename)
		json.NewEncoder(w).Encode(DatasetInfo{
			Filename:     "qa.jsonl",
			TotalRecords: 120,
			Preview:      []map[string]any{{"q": "hi", "a": "hello"}},
		})
	}))
	defer server.Close()

	c := NewDatasetClient(testConfig(server.URL), utils.NewMockLogger())
	info, err := c.Upload(context.Background(), "qa.jsonl", strings.NewReader(`{"q":"hi","a":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, 120, info.TotalRecords)
	assert.Len(t, info.Preview, 1)
}

func TestDatasetListAndDelete(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/datasets":
			json.NewEncoder(w).Encode([]DatasetInfo{{Filename: "a.jsonl"}, {Filename: "b.csv"}})
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewDatasetClient(testConfig(server.URL), utils.NewMockLogger())

	datasets, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, datasets, 2)

	require.NoError(t, c.Delete(context.Background(), "a.jsonl"))
	assert.Equal(t, "/api/datasets/a.jsonl", deleted)
}

func TestDatasetAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/datasets/analyze/qa.jsonl", r.URL.Path)
		json.NewEncoder(w).Encode(DatasetAnalysis{
			TotalRecords: 50,
			Fields: []FieldInfo{
				{Name: "q", Type: "string", Coverage: 1.0, PopulatedCount: 50, TotalCount: 50},
				{Name: "a", Type: "string", Coverage: 0.9, PopulatedCount: 45, TotalCount: 50},
			},
		})
	}))
	defer server.Close()

	c := NewDatasetClient(testConfig(server.URL), utils.NewMockLogger())
	analysis, err := c.Analyze(context.Background(), "qa.jsonl")
	require.NoError(t, err)
	require.Len(t, analysis.Fields, 2)
	assert.Equal(t, 0.9, analysis.Fields[1].Coverage)
}

func TestDatasetAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DatasetAnalysis{Error: "unsupported file format"})
	}))
	defer server.Close()

	c := NewDatasetClient(testConfig(server.URL), utils.NewMockLogger())
	_, err := c.Analyze(context.Background(), "bad.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestPreviewTransformation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/datasets/preview-transformation", r.URL.Path)
		var req previewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, wizard.UseCaseQA, req.UseCase)
		assert.Equal(t, "q", req.Mappings["question"])
		json.NewEncoder(w).Encode(TransformationPreview{
			OriginalData:    []map[string]any{{"q": "hi"}},
			TransformedData: []map[string]any{{"question": "hi"}},
			AdapterConfig:   map[string]any{"adapter": "qa"},
		})
	}))
	defer server.Close()

	c := NewDatasetClient(testConfig(server.URL), utils.NewMockLogger())
	preview, err := c.PreviewTransformation(context.Background(), "qa.jsonl",
		map[string]string{"question": "q", "answer": "a"}, wizard.UseCaseQA)
	require.NoError(t, err)
	assert.Equal(t, "hi", preview.TransformedData[0]["question"])
}
