// Package client talks to the external collaborators a pipeline needs
// beyond construction: the backend API that mints DOIs and publishes
// metadata records, the remote index it searches, the compute service that
// executes registered functions, and the model registry. None of these
// carry composition logic; they are request/response calls behind narrow
// interfaces.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/arbor-ml/arbor/pkg/pipeline"
)

// ErrNotFound is returned when the remote index has no record matching the
// request.
var ErrNotFound = errors.New("no matching record found")

// Authorizer supplies the Authorization header value for backend calls.
type Authorizer interface {
	AuthorizationHeader() string
}

// TokenAuthorizer is a static bearer token Authorizer.
type TokenAuthorizer string

func (t TokenAuthorizer) AuthorizationHeader() string { return "Bearer " + string(t) }

// BackendClient is the HTTP client for the backend API.
type BackendClient struct {
	baseURL    string
	authorizer Authorizer
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a BackendClient.
type Option func(c *BackendClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *BackendClient) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the structured logger request failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *BackendClient) {
		c.logger = logger
	}
}

// New creates a backend client for the given API base URL.
func New(baseURL string, authorizer Authorizer, opts ...Option) *BackendClient {
	c := &BackendClient{
		baseURL:    baseURL,
		authorizer: authorizer,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *BackendClient) call(ctx context.Context, method, resource string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "unable to serialize request payload")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+resource, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "unable to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authorizer != nil {
		req.Header.Set("Authorization", c.authorizer.AuthorizationHeader())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", resource)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "unable to read response from %s", resource)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(ErrNotFound, resource)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if c.logger != nil {
			c.logger.Error("backend request failed",
				"resource", resource, "status", resp.StatusCode, "body", string(respBody))
		}

		return errors.Errorf("request to %s failed with status %d: %s", resource, resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return errors.Wrapf(err, "could not parse response from %s as JSON: %s", resource, respBody)
	}

	return nil
}

type doiResponse struct {
	DOI string `json:"doi"`
}

// MintDraftDOI asks the backend to mint a draft DOI from a DataCite
// attributes payload.
func (c *BackendClient) MintDraftDOI(ctx context.Context, datacitePayload json.RawMessage) (string, error) {
	var resp doiResponse
	if err := c.call(ctx, http.MethodPost, "/doi", datacitePayload, &resp); err != nil {
		return "", err
	}
	if resp.DOI == "" {
		return "", errors.New("failed to mint DOI: response was missing doi field")
	}

	return resp.DOI, nil
}

// UpdateDOI pushes updated DataCite attributes for an already-minted DOI.
func (c *BackendClient) UpdateDOI(ctx context.Context, datacitePayload json.RawMessage) error {
	return c.call(ctx, http.MethodPut, "/doi", datacitePayload, nil)
}

// PublishPipeline publishes a registered pipeline's metadata record to the
// remote index. The returned DOI is the record's persistent identifier.
func (c *BackendClient) PublishPipeline(ctx context.Context, rp *pipeline.RegisteredPipeline) (string, error) {
	var resp doiResponse
	if err := c.call(ctx, http.MethodPost, "/pipeline-search-record", rp, &resp); err != nil {
		return "", err
	}
	if resp.DOI == "" {
		return "", errors.New("failed to publish pipeline: response was missing doi field")
	}

	return resp.DOI, nil
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Count   int                            `json:"count"`
	Entries []*pipeline.RegisteredPipeline `json:"entries"`
}

// Search queries the remote index for published pipeline records.
func (c *BackendClient) Search(ctx context.Context, query string) ([]*pipeline.RegisteredPipeline, error) {
	var resp searchResponse
	if err := c.call(ctx, http.MethodPost, "/search", searchRequest{Query: query}, &resp); err != nil {
		return nil, err
	}

	return resp.Entries, nil
}

// GetPipelineByDOI fetches one published pipeline record by DOI.
func (c *BackendClient) GetPipelineByDOI(ctx context.Context, doi string) (*pipeline.RegisteredPipeline, error) {
	results, err := c.Search(ctx, `(doi: "`+doi+`")`)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "pipeline with doi %s", doi)
	}

	return results[0], nil
}

type executeRequest struct {
	FunctionID uuid.UUID      `json:"function_id"`
	Endpoint   uuid.UUID      `json:"endpoint"`
	Args       []any          `json:"args"`
	Kwargs     map[string]any `json:"kwargs,omitempty"`
}

type executeResponse struct {
	Result any `json:"result"`
}

// Execute submits a registered function invocation to the given compute
// endpoint and waits for its result. Implements pipeline.Executor.
func (c *BackendClient) Execute(ctx context.Context, functionID, endpoint uuid.UUID, args []any, kwargs map[string]any) (any, error) {
	var resp executeResponse
	err := c.call(ctx, http.MethodPost, "/execute", executeRequest{
		FunctionID: functionID,
		Endpoint:   endpoint,
		Args:       args,
		Kwargs:     kwargs,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Result, nil
}

var _ pipeline.Executor = (*BackendClient)(nil)
