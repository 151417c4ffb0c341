// MCPBridge - WebSocket to stdio bridge for MCP tool servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mcpbridge

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	// ErrSpawn wraps every failure to start the child.
	ErrSpawn = errors.New("process: spawn failed")

	// ErrTerminationTimeout is returned by Terminate when the child is still
	// running after the grace period.
	ErrTerminationTimeout = errors.New("process: did not exit within grace period")
)

// Spec describes the child to start.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // nil inherits the parent environment
}

// String renders the command line for logs.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// Process is one running child with its three standard streams.
//
// Each stream is an independent os.Pipe, so a blocked read on stdout never
// stalls stderr or a write to stdin. The parent keeps ownership of the read
// ends; they are only closed by Release, never by Wait.
type Process struct {
	spec Spec
	cmd  *exec.Cmd

	stdin  *os.File
	stdout *os.File
	stderr *os.File

	done    chan struct{}
	waitErr error

	closeInputOnce sync.Once
	closeInputErr  error
	releaseOnce    sync.Once
}

// Start spawns the child described by spec.
func Start(spec Spec) (*Process, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}

	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	pipe := func() (r, w *os.File, err error) {
		r, w, err = os.Pipe()
		if err == nil {
			opened = append(opened, r, w)
		}
		return r, w, err
	}

	inR, inW, err := pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrSpawn, err)
	}
	outR, outW, err := pipe()
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("%w: stdout pipe: %w", ErrSpawn, err)
	}
	errR, errW, err := pipe()
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("%w: stderr pipe: %w", ErrSpawn, err)
	}

	cmd := exec.Command(spec.Command, spec.Args...) //nolint:gosec // command comes from operator configuration
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		closeAll()
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Command, err)
	}

	// The child holds its own copies now.
	_ = inR.Close()
	_ = outW.Close()
	_ = errW.Close()

	p := &Process{
		spec:   spec,
		cmd:    cmd,
		stdin:  inW,
		stdout: outR,
		stderr: errR,
		done:   make(chan struct{}),
	}
	go p.wait()
	return p, nil
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
}

// PID returns the operating system process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Spec returns the spec the process was started with.
func (p *Process) Spec() Spec {
	return p.spec
}

// Stdin is the write side of the child's standard input.
func (p *Process) Stdin() io.Writer { return p.stdin }

// Stdout is the read side of the child's standard output.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stderr is the read side of the child's standard error.
func (p *Process) Stderr() io.Reader { return p.stderr }

// Done is closed once the child has exited and been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Running reports whether the child has not yet exited.
func (p *Process) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// ExitErr returns the result of Wait. Only meaningful after Done is closed.
func (p *Process) ExitErr() error {
	select {
	case <-p.done:
		return p.waitErr
	default:
		return nil
	}
}

// CloseInput closes the child's standard input. Safe to call repeatedly.
func (p *Process) CloseInput() error {
	p.closeInputOnce.Do(func() {
		p.closeInputErr = p.stdin.Close()
	})
	return p.closeInputErr
}

// Terminate sends SIGTERM and waits up to grace for the child to exit.
func (p *Process) Terminate(grace time.Duration) error {
	if !p.Running() {
		return nil
	}
	if err := signalProcess(p.cmd.Process, syscall.SIGTERM); err != nil {
		return fmt.Errorf("sigterm pid %d: %w", p.PID(), err)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
		return ErrTerminationTimeout
	}
}

// Kill forces the child to exit and waits until it has been reaped.
func (p *Process) Kill() error {
	if !p.Running() {
		return nil
	}
	if err := signalProcess(p.cmd.Process, os.Kill); err != nil {
		return fmt.Errorf("kill pid %d: %w", p.PID(), err)
	}
	<-p.done
	return nil
}

// Shutdown closes stdin, terminates gracefully and kills the child if it
// outlives grace. forced reports whether a kill was needed.
func (p *Process) Shutdown(grace time.Duration) (forced bool, err error) {
	_ = p.CloseInput()

	if !p.Running() {
		return false, nil
	}

	if termErr := p.Terminate(grace); termErr == nil {
		return false, nil
	}

	// Timed out, or the signal could not be delivered.
	return true, p.Kill()
}

// Release closes the parent's read ends of stdout and stderr, unblocking any
// reader still waiting on them. Safe to call repeatedly.
func (p *Process) Release() {
	p.releaseOnce.Do(func() {
		_ = p.stdout.Close()
		_ = p.stderr.Close()
	})
}

// signalProcess sends sig to a process, returning nil if the process
// has already exited (os.ErrProcessDone).
func signalProcess(proc *os.Process, sig os.Signal) error {
	err := proc.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
