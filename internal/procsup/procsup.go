// Package procsup supervises a long-lived child process that exposes an
// HTTP endpoint: the path-generator and, when co-spawned, the language
// executor. It performs scoped acquisition of a background subprocess:
// spawn, capture output into bounded ring buffers, wait for the process to
// become healthy, and guarantee the child is killed on every exit path.
package procsup

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/altwalker/altwalker-go/internal/ring"
)

// Options configures a supervised process.
type Options struct {
	// Command and Args build the child process via exec.CommandContext.
	Command string
	Args    []string
	Dir     string
	Env     []string

	// OutputCapacity bounds the stdout/stderr ring buffers. Zero uses
	// ring.DefaultCapacity.
	OutputCapacity int

	// HealthCheck is polled on HealthInterval until it returns true, the
	// process exits, or HealthTimeout elapses. A nil HealthCheck skips the
	// health wait (the process is considered healthy once started).
	HealthCheck   func(ctx context.Context) (bool, error)
	HealthInterval time.Duration
	HealthTimeout  time.Duration
}

// Process is a supervised, running child process.
type Process struct {
	opts   Options
	cmd    *exec.Cmd
	stdout *ring.Buffer
	stderr *ring.Buffer

	mu       sync.Mutex
	killed   bool
	exitCh   chan struct{}
	exitErr  error
}

// Start spawns the child process, begins draining its stdout/stderr into
// bounded ring buffers on background goroutines, and blocks until the
// configured health check passes (or HealthTimeout elapses). On any error
// path the child is killed before Start returns.
func Start(ctx context.Context, opts Options) (*Process, error) {
	capacity := opts.OutputCapacity
	if capacity <= 0 {
		capacity = ring.DefaultCapacity
	}

	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = opts.Env
	}

	stdout := ring.New(capacity)
	stderr := ring.New(capacity)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("procsup: start %s: %w", opts.Command, err)
	}

	p := &Process{
		opts:   opts,
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		exitCh: make(chan struct{}),
	}

	go func() {
		p.exitErr = cmd.Wait()
		close(p.exitCh)
	}()

	if opts.HealthCheck != nil {
		if err := p.waitHealthy(ctx); err != nil {
			p.Kill()
			return nil, err
		}
	}

	return p, nil
}

func (p *Process) waitHealthy(ctx context.Context) error {
	interval := p.opts.HealthInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	timeout := p.opts.HealthTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := p.opts.HealthCheck(ctx)
		if err == nil && ok {
			return nil
		}

		select {
		case <-p.exitCh:
			return fmt.Errorf("procsup: %s exited before becoming healthy (exit error: %v)\n%s",
				p.opts.Command, p.exitErr, p.stderr.String())
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return fmt.Errorf("procsup: %s did not become healthy within %s", p.opts.Command, timeout)
			}
		}
	}
}

// Alive reports whether the child process has not yet exited.
func (p *Process) Alive() bool {
	select {
	case <-p.exitCh:
		return false
	default:
		return true
	}
}

// ExitCode returns the child's exit code once it has exited, or -1 if it is
// still running or was killed before producing one.
func (p *Process) ExitCode() int {
	if p.Alive() {
		return -1
	}
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// StdoutTail returns the captured tail of the child's stdout.
func (p *Process) StdoutTail() string { return p.stdout.String() }

// StderrTail returns the captured tail of the child's stderr.
func (p *Process) StderrTail() string { return p.stderr.String() }

// Kill terminates the child process. It is idempotent and safe to call
// multiple times or on a process that has already exited.
func (p *Process) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.killed {
		return
	}
	p.killed = true

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.exitCh
}
