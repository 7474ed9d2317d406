// Package executor implements the Executor layer: a uniform contract for
// dispatching steps to test code, with an HTTP implementation speaking the
// executor wire protocol and an offline no-op implementation used for
// replay verification.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/altwalker/altwalker-go/internal/altwalkererrors"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/procsup"
	"github.com/altwalker/altwalker-go/internal/wire"
)

// Executor is the uniform contract the walker dispatches steps through.
type Executor interface {
	HasModel(ctx context.Context, name string) (bool, error)
	HasStep(ctx context.Context, modelName, name string) (bool, error)
	ExecuteStep(ctx context.Context, modelName, name string, data map[string]string) (*model.ExecutionResult, error)
	Reset(ctx context.Context) error
	Kill()
}

// HTTPOptions configures an HTTP executor.
type HTTPOptions struct {
	URL        string // e.g. "http://localhost:5000"
	TestPath   string // path to load, forwarded to POST /altwalker/load
	HTTPClient *http.Client

	// Spawn, when set, co-spawns the test executable this executor talks
	// to and supervises its lifecycle identically to the generator
	// subprocess (captured output, health wait, kill-on-close).
	Spawn         *SpawnOptions
	HealthTimeout time.Duration
}

// SpawnOptions describes how to launch a process-spawned language
// executor this HTTPExecutor owns.
type SpawnOptions struct {
	Command string
	Args    []string
	Dir     string
}

// livenessTimeout bounds the cheap, liveness-style calls (hasModel,
// hasStep, reset). executeStep carries no client-level timeout of its own
// since test code it dispatches to may legitimately run for a long time;
// callers bound it through ctx instead.
const livenessTimeout = 5 * time.Second

// HTTPExecutor is the wire-protocol client for the executor HTTP contract.
type HTTPExecutor struct {
	baseURL string
	http    *http.Client
	proc    *procsup.Process
}

// NewHTTP constructs an HTTPExecutor. When opts.Spawn is set, it first
// spawns and health-waits on the owned subprocess before loading the test
// path; otherwise it assumes a server is already listening at opts.URL.
func NewHTTP(ctx context.Context, opts HTTPOptions) (*HTTPExecutor, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	e := &HTTPExecutor{baseURL: opts.URL + "/altwalker", http: httpClient}

	if opts.Spawn != nil {
		proc, err := procsup.Start(ctx, procsup.Options{
			Command: opts.Spawn.Command,
			Args:    opts.Spawn.Args,
			Dir:     opts.Spawn.Dir,
			HealthCheck: func(ctx context.Context) (bool, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/hasModel?name=__health__", nil)
				if err != nil {
					return false, err
				}
				resp, err := httpClient.Do(req)
				if err != nil {
					return false, nil
				}
				defer resp.Body.Close()
				return resp.StatusCode > 0, nil
			},
			HealthTimeout: opts.HealthTimeout,
		})
		if err != nil {
			return nil, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.NewHTTP", err)
		}
		e.proc = proc
	}

	if opts.TestPath != "" {
		if err := e.load(ctx, opts.TestPath); err != nil {
			e.Kill()
			return nil, err
		}
	}

	return e, nil
}

func (e *HTTPExecutor) load(ctx context.Context, path string) error {
	body, _ := json.Marshal(wire.ExecutorLoadRequest{Path: path})
	_, status, err := e.do(ctx, http.MethodPost, "/load", body)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &ProtocolError{Kind: kindForStatus(status), Message: fmt.Sprintf("load %q failed with status %d", path, status)}
	}
	return nil
}

// HasModel reports whether the executor's loaded test code declares a
// class/model with the given name.
func (e *HTTPExecutor) HasModel(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()

	raw, status, err := e.do(ctx, http.MethodGet, "/hasModel?name="+url.QueryEscape(name), nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, &ProtocolError{Kind: kindForStatus(status), Message: "hasModel failed"}
	}
	var env wire.ExecutorPayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.HasModel", err)
	}
	var payload wire.HasModelPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return false, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.HasModel", err)
	}
	return payload.HasModel, nil
}

// HasStep reports whether the given step (fixture when modelName=="") is
// present in the loaded test code.
func (e *HTTPExecutor) HasStep(ctx context.Context, modelName, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()

	q := "name=" + url.QueryEscape(name)
	if modelName != "" {
		q += "&modelName=" + url.QueryEscape(modelName)
	}
	raw, status, err := e.do(ctx, http.MethodGet, "/hasStep?"+q, nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, &ProtocolError{Kind: kindForStatus(status), Message: "hasStep failed"}
	}
	var env wire.ExecutorPayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.HasStep", err)
	}
	var payload wire.HasStepPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return false, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.HasStep", err)
	}
	return payload.HasStep, nil
}

// ExecuteStep dispatches a step and returns its result. A non-200 response
// with a reserved status code is surfaced as a ProtocolError; a 200
// response carrying a non-null error surfaces as a populated
// ExecutionResult.Error (a StepFailure, not a transport error).
func (e *HTTPExecutor) ExecuteStep(ctx context.Context, modelName, name string, data map[string]string) (*model.ExecutionResult, error) {
	q := "name=" + url.QueryEscape(name)
	if modelName != "" {
		q += "&modelName=" + url.QueryEscape(modelName)
	}
	body, _ := json.Marshal(wire.ExecuteStepRequest{Data: data})

	raw, status, err := e.do(ctx, http.MethodPost, "/executeStep?"+q, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &ProtocolError{Kind: kindForStatus(status), Message: "executeStep failed"}
	}

	var env wire.ExecutorPayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.ExecuteStep", err)
	}
	var payload wire.ExecuteStepPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.ExecuteStep", err)
	}

	result := &model.ExecutionResult{Output: payload.Output, Data: payload.Data}
	if len(payload.Result) > 0 {
		var r any
		if err := json.Unmarshal(payload.Result, &r); err == nil {
			result.Result = r
		}
	}
	if payload.Error != nil {
		result.Error = &model.StepError{Message: payload.Error.Message, Trace: payload.Error.Trace}
	}
	return result, nil
}

// Reset asks the executor to reset its internal state between runs.
func (e *HTTPExecutor) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()

	_, status, err := e.do(ctx, http.MethodPut, "/reset", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &ProtocolError{Kind: kindForStatus(status), Message: "reset failed"}
	}
	return nil
}

// Kill tears down the owned subprocess, if any. Idempotent.
func (e *HTTPExecutor) Kill() {
	if e.proc != nil {
		e.proc.Kill()
	}
}

func (e *HTTPExecutor) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return nil, 0, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.do", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, 0, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.do", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, altwalkererrors.Wrap(altwalkererrors.KindExecutorTransport, "executor.do", err)
	}

	return raw, resp.StatusCode, nil
}

// OfflineExecutor is a no-op Executor used by the offline command's dry
// verification and by tests: every step is reported as passed without
// dispatching anywhere.
type OfflineExecutor struct{}

// NewOffline constructs a no-op Executor.
func NewOffline() *OfflineExecutor { return &OfflineExecutor{} }

func (o *OfflineExecutor) HasModel(ctx context.Context, name string) (bool, error) { return true, nil }

func (o *OfflineExecutor) HasStep(ctx context.Context, modelName, name string) (bool, error) {
	return true, nil
}

func (o *OfflineExecutor) ExecuteStep(ctx context.Context, modelName, name string, data map[string]string) (*model.ExecutionResult, error) {
	return &model.ExecutionResult{Output: "", Data: data}, nil
}

func (o *OfflineExecutor) Reset(ctx context.Context) error { return nil }

func (o *OfflineExecutor) Kill() {}
