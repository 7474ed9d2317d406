package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Executor = (*HTTPExecutor)(nil)
	_ Executor = (*OfflineExecutor)(nil)
)

func newServerExecutor(t *testing.T, handler http.Handler) *HTTPExecutor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &HTTPExecutor{baseURL: srv.URL + "/altwalker", http: srv.Client()}
}

func TestHasModelParsesPayload(t *testing.T) {
	e := newServerExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/altwalker/hasModel", r.URL.Path)
		assert.Equal(t, "Login", r.URL.Query().Get("name"))
		json.NewEncoder(w).Encode(map[string]any{"payload": map[string]any{"hasModel": true}})
	}))

	ok, err := e.HasModel(context.Background(), "Login")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecuteStepReturnsErrorOnStepFailure(t *testing.T) {
	e := newServerExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"payload": map[string]any{
				"output": "x",
				"error":  map[string]any{"message": "boom", "trace": "trace"},
			},
		})
	}))

	result, err := e.ExecuteStep(context.Background(), "Login", "v_login", nil)
	require.NoError(t, err)
	require.True(t, result.Failed())
	assert.Equal(t, "boom", result.Error.Message)
}

func TestExecuteStepReturnsDataOverrides(t *testing.T) {
	e := newServerExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"payload": map[string]any{"output": "", "data": map[string]any{"count": "3"}},
		})
	}))

	result, err := e.ExecuteStep(context.Background(), "Login", "v_login", map[string]string{"count": "0"})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, "3", result.Data["count"])
}

func TestExecuteStepMapsReservedStatusToProtocolError(t *testing.T) {
	e := newServerExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(461)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "no such step"}})
	}))

	_, err := e.ExecuteStep(context.Background(), "Login", "v_missing", nil)
	require.Error(t, err)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, StepNotFound, protoErr.Kind)
	assert.False(t, protoErr.Kind.Fatal())
}

func TestLoadMapsPathNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(463)
	}))
	defer srv.Close()

	e := &HTTPExecutor{baseURL: srv.URL + "/altwalker", http: srv.Client()}
	err := e.load(context.Background(), "/no/such/path")
	require.Error(t, err)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, PathNotFound, protoErr.Kind)
	assert.True(t, protoErr.Kind.Fatal())
}

func TestResetMapsNoCodeLoaded(t *testing.T) {
	e := newServerExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(465)
	}))

	err := e.Reset(context.Background())
	require.Error(t, err)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, NoCodeLoaded, protoErr.Kind)
}

func TestOfflineExecutorAlwaysPasses(t *testing.T) {
	e := NewOffline()
	ok, err := e.HasModel(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, ok)

	result, err := e.ExecuteStep(context.Background(), "M", "v0", map[string]string{"a": "1"})
	require.NoError(t, err)
	assert.False(t, result.Failed())
	assert.Equal(t, "1", result.Data["a"])
}
