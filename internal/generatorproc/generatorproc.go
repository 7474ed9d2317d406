// Package generatorproc owns the lifecycle of the external path-generator
// subprocess (GraphWalker, run in online/REST mode) and exposes a typed
// client for its REST surface. It is the only component that speaks the
// generator's wire protocol.
package generatorproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/altwalker/altwalker-go/internal/altwalkererrors"
	"github.com/altwalker/altwalker-go/internal/model"
	"github.com/altwalker/altwalker-go/internal/procsup"
	"github.com/altwalker/altwalker-go/internal/wire"
)

// Options configures a generator subprocess + client.
type Options struct {
	Command string // defaults to "gw" (the GraphWalker CLI)
	Args    []string
	Host    string // defaults to 127.0.0.1
	Port    int    // 0 makes Start pick a free local port (asked from the
	// OS through a throwaway listener) and pass it to the subprocess; the
	// CLI leaves Port at 0 unless --gw-port, .altwalker.yml or the
	// environment supplies one.
	HealthTimeout time.Duration
	HTTPClient    *http.Client
}

// Client drives one GraphWalker subprocess over its REST API.
type Client struct {
	proc    *procsup.Process
	baseURL string
	http    *http.Client
}

// GeneratorExited is returned when the subprocess terminates mid-request.
type GeneratorExited struct {
	ExitCode int
	Tail     string
}

func (e *GeneratorExited) Error() string {
	return fmt.Sprintf("generator process exited (code %d):\n%s", e.ExitCode, e.Tail)
}

// Start spawns the generator subprocess and blocks until its health
// endpoint responds or the health timeout elapses.
func Start(ctx context.Context, opts Options) (*Client, error) {
	host := opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := opts.Port
	if port == 0 {
		var err error
		port, err = freePort()
		if err != nil {
			return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Start", err)
		}
	}

	baseURL := fmt.Sprintf("http://%s:%d/graphwalker", host, port)
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	command := opts.Command
	if command == "" {
		command = "gw"
	}
	args := append([]string{"online", "-p", strconv.Itoa(port)}, opts.Args...)

	proc, err := procsup.Start(ctx, procsup.Options{
		Command: command,
		Args:    args,
		HealthCheck: func(ctx context.Context) (bool, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/hasNext", nil)
			if err != nil {
				return false, err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return false, err
			}
			defer resp.Body.Close()
			var env wire.GeneratorEnvelope
			return json.NewDecoder(resp.Body).Decode(&env) == nil, nil
		},
		HealthTimeout: opts.HealthTimeout,
	})
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Start", err)
	}

	return &Client{proc: proc, baseURL: baseURL, http: httpClient}, nil
}

// CheckOptions configures a one-shot generator check invocation.
type CheckOptions struct {
	Command string // defaults to "gw"
	Dir     string
}

// Check runs the generator's one-shot "check" subcommand against a model
// set and generator expression, writing the model set to a temporary
// file and returning one diagnostic line per non-empty line of output.
// Unlike Start, this spawns a single short-lived process and does not
// keep it running; it satisfies validator.ModelChecker.
func Check(ctx context.Context, ms *model.ModelSet, expression string, opts CheckOptions) ([]string, error) {
	payload, err := json.Marshal(ms)
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Check", err)
	}

	f, err := os.CreateTemp("", "altwalker-check-*.json")
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Check", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Check", err)
	}
	if err := f.Close(); err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Check", err)
	}

	command := opts.Command
	if command == "" {
		command = "gw"
	}
	args := []string{"check", f.Name()}
	if expression != "" {
		args = append(args, "-e", expression)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = opts.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Check", err)
		}
		// A non-zero exit with diagnostics on stdout/stderr is the normal
		// "check found issues" outcome, not a transport failure.
	}

	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Convert runs the generator's one-shot "convert" subcommand against a
// GraphML file and returns the resulting JSON model-set bytes.
func Convert(ctx context.Context, graphmlPath string, opts CheckOptions) ([]byte, error) {
	command := opts.Command
	if command == "" {
		command = "gw"
	}

	cmd := exec.CommandContext(ctx, command, "convert", graphmlPath, "-f", "json")
	cmd.Dir = opts.Dir
	out, err := cmd.Output()
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Convert", err)
	}
	return out, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// Close kills the generator subprocess; it is idempotent. No graceful
// shutdown request is sent to the generator before the kill.
func (c *Client) Close() {
	if c == nil || c.proc == nil {
		return
	}
	c.proc.Kill()
}

// Load uploads the model set and generator expression to the running
// generator.
func (c *Client) Load(ctx context.Context, ms *model.ModelSet, expression string) error {
	body, err := json.Marshal(struct {
		Models     *model.ModelSet `json:"models"`
		Expression string          `json:"expression"`
	}{Models: ms, Expression: expression})
	if err != nil {
		return altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.Load", err)
	}

	_, err = c.post(ctx, "/load", body)
	return err
}

// HasNext reports whether the generator has another step to offer.
func (c *Client) HasNext(ctx context.Context) (bool, error) {
	raw, err := c.get(ctx, "/hasNext")
	if err != nil {
		return false, err
	}
	var body wire.HasNextBody
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		// Empty/malformed body means "no more" iff the child is alive.
		if c.proc.Alive() {
			return false, nil
		}
		return false, c.exitedErr()
	}
	return body.HasNext, nil
}

// GetNext requests the next step, optionally in verbose and/or unvisited
// mode.
func (c *Client) GetNext(ctx context.Context, verbose, unvisited bool) (model.Step, error) {
	path := "/getNext"
	if verbose {
		path += "?verbose=true"
	}
	if unvisited {
		if verbose {
			path += "&unvisitedElements=true"
		} else {
			path += "?unvisitedElements=true"
		}
	}

	raw, err := c.get(ctx, path)
	if err != nil {
		return model.Step{}, err
	}

	var body wire.GetNextBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.Step{}, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.GetNext", err)
	}

	return model.Step{
		ID:                body.ID,
		Name:              body.Name,
		ModelName:         body.ModelName,
		Data:              body.Data,
		Properties:        body.Properties,
		UnvisitedElements: body.UnvisitedElements,
	}, nil
}

// GetData returns the generator's current data context, string-keyed per
// the wire surface.
func (c *Client) GetData(ctx context.Context) (map[string]string, error) {
	raw, err := c.get(ctx, "/getData")
	if err != nil {
		return nil, err
	}
	var raw2 map[string]json.RawMessage
	if err := json.Unmarshal(raw, &raw2); err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.GetData", err)
	}
	out := make(map[string]string, len(raw2))
	for k, v := range raw2 {
		out[k] = coerceToString(v)
	}
	return out, nil
}

// coerceToString converts a possibly-typed JSON value back to its string
// wire form, per §9's string-typed-data note: callers must re-parse if
// they need a native type.
func coerceToString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(bytes.Trim(raw, `"`))
}

// SetData pushes a single key/value pair back into the generator. value
// must be a string, int, or bool; it is encoded to a JS literal before
// transmission.
func (c *Client) SetData(ctx context.Context, key string, value any) error {
	literal, err := encodeJSLiteral(value)
	if err != nil {
		return altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.SetData", err)
	}

	body, _ := json.Marshal(map[string]string{"value": literal})
	_, err = c.put(ctx, "/setData?name="+key, body)
	return err
}

func encodeJSLiteral(value any) (string, error) {
	switch v := value.(type) {
	case string:
		b, _ := json.Marshal(v)
		return string(b), nil
	case int, int32, int64, float32, float64:
		return fmt.Sprint(v), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("generatorproc: unsupported data value type %T", value)
	}
}

// Restart resets the generator's path to the beginning without respawning
// the subprocess.
func (c *Client) Restart(ctx context.Context) error {
	_, err := c.put(ctx, "/restart", nil)
	return err
}

// Fail marks the current step as failed in the generator's statistics.
func (c *Client) Fail(ctx context.Context, message string) error {
	body, _ := json.Marshal(map[string]string{"message": message})
	_, err := c.put(ctx, "/fail", body)
	return err
}

// GetStatistics returns the generator's cumulative path statistics.
func (c *Client) GetStatistics(ctx context.Context) (model.Statistics, error) {
	raw, err := c.get(ctx, "/getStatistics")
	if err != nil {
		return model.Statistics{}, err
	}
	var body wire.StatisticsBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.Statistics{}, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.GetStatistics", err)
	}
	return model.Statistics{
		EdgeCoverage:             body.EdgeCoverage,
		VertexCoverage:           body.VertexCoverage,
		TotalCompletedEdgeVisits: body.TotalCompletedEdgeVisits,
	}, nil
}

func (c *Client) exitedErr() error {
	return altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc",
		&GeneratorExited{ExitCode: c.proc.ExitCode(), Tail: c.proc.StderrTail()})
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) put(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.do", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if !c.proc.Alive() {
			return nil, c.exitedErr()
		}
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.do", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, altwalkererrors.Wrap(altwalkererrors.KindGenerator, "generatorproc.do", err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var env wire.GeneratorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Empty/malformed body is "no more" at the HasNext call site only;
		// elsewhere it is an error.
		return raw, nil
	}
	if !env.Success {
		return nil, altwalkererrors.New(altwalkererrors.KindGenerator, "generatorproc.do", env.Message)
	}
	return env.Body, nil
}
