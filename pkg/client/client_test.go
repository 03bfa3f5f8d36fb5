package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-ml/arbor/pkg/client"
	"github.com/arbor-ml/arbor/pkg/pipeline"
)

func registeredFixture(t *testing.T) *pipeline.RegisteredPipeline {
	t.Helper()

	step, err := pipeline.NewStep("double", "(x: int) -> int", func(ctx context.Context, args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})
	require.NoError(t, err)

	pipe, err := pipeline.New("fixture", []*pipeline.Step{step},
		pipeline.WithDOI("10.23677/fake-doi"),
		pipeline.WithAuthors("Ada Lovelace"))
	require.NoError(t, err)

	rp, err := pipeline.Register(pipe, uuid.New())
	require.NoError(t, err)

	return rp
}

func TestMintDraftDOI(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/doi", r.URL.Path)
		assert.Equal(t, "Bearer sesame", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var attrs map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&attrs))
		assert.Equal(t, "arbor-ml.dev", attrs["publisher"])

		_ = json.NewEncoder(w).Encode(map[string]string{"doi": "10.23677/minted"})
	}))
	defer server.Close()

	c := client.New(server.URL, client.TokenAuthorizer("sesame"))

	payload := []byte(`{"publisher": "arbor-ml.dev"}`)
	doi, err := c.MintDraftDOI(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "10.23677/minted", doi)
}

func TestMintDraftDOIMissingField(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	_, err := c.MintDraftDOI(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing doi field")
}

func TestUpdateDOI(t *testing.T) {
	t.Parallel()

	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	require.NoError(t, c.UpdateDOI(context.Background(), []byte(`{}`)))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/doi", path)
}

func TestPublishPipeline(t *testing.T) {
	t.Parallel()

	rp := registeredFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pipeline-search-record", r.URL.Path)

		var got pipeline.RegisteredPipeline
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, rp.DOI, got.DOI)

		_ = json.NewEncoder(w).Encode(map[string]string{"doi": rp.DOI})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	doi, err := c.PublishPipeline(context.Background(), rp)
	require.NoError(t, err)
	assert.Equal(t, rp.DOI, doi)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	rp := registeredFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `(tags: "demo")`, req["query"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":   1,
			"entries": []*pipeline.RegisteredPipeline{rp},
		})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	results, err := c.Search(context.Background(), `(tags: "demo")`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, rp.DOI, results[0].DOI)
	assert.Equal(t, rp.Steps, results[0].Steps)
}

func TestGetPipelineByDOI(t *testing.T) {
	t.Parallel()

	rp := registeredFixture(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `(doi: "`+rp.DOI+`")`, req["query"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"count":   1,
			"entries": []*pipeline.RegisteredPipeline{rp},
		})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	got, err := c.GetPipelineByDOI(context.Background(), rp.DOI)
	require.NoError(t, err)
	assert.Equal(t, rp.Title, got.Title)
}

func TestGetPipelineByDOIEmptyResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"count": 0, "entries": []any{}})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	_, err := c.GetPipelineByDOI(context.Background(), "10.23677/nothing")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestNotFoundStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	_, err := c.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestErrorStatusIncludesBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("the backend is on fire"))
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	_, err := c.MintDraftDOI(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(http.StatusInternalServerError))
	assert.Contains(t, err.Error(), "the backend is on fire")
}

func TestExecute(t *testing.T) {
	t.Parallel()

	functionID := uuid.New()
	endpoint := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/execute", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, functionID.String(), req["function_id"])
		assert.Equal(t, endpoint.String(), req["endpoint"])
		assert.Equal(t, []any{float64(5)}, req["args"])

		_ = json.NewEncoder(w).Encode(map[string]any{"result": "10:10"})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	result, err := c.Execute(context.Background(), functionID, endpoint, []any{5}, nil)
	require.NoError(t, err)
	assert.Equal(t, "10:10", result)
}

func TestExecuteDrivesRegisteredCall(t *testing.T) {
	t.Parallel()

	rp := registeredFixture(t)
	endpoint := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, rp.FuncID.String(), req["function_id"])

		_ = json.NewEncoder(w).Encode(map[string]any{"result": float64(10)})
	}))
	defer server.Close()

	c := client.New(server.URL, nil)

	result, err := rp.Call(context.Background(), c, endpoint, []any{5}, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(10), result)
}
