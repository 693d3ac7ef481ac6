package bar

import (
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"
)

// Renderer is the external process (or a test stand-in) consuming frames
// and reporting input events.
type Renderer interface {
	// WriteFrame sends one complete newline-terminated frame in a single
	// write, so the renderer never observes a partial line.
	WriteFrame(frame []byte) error
	// Events is the stream of newline-terminated event names.
	Events() *Source
	// Close terminates the renderer and releases both pipes. It must be
	// safe to call on every exit path.
	Close() error
}

// ProcessRenderer runs the real bar as a long-lived child process with
// piped stdio. It is launched once and never restarted.
type ProcessRenderer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events *Source
	logger *zap.Logger
}

// StartProcess launches the renderer command with stdin and stdout piped.
func StartProcess(command string, args []string, logger *zap.Logger) (*ProcessRenderer, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("renderer stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("renderer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start renderer: %w", err)
	}

	logger.Info("renderer started",
		zap.String("command", command),
		zap.Int("pid", cmd.Process.Pid))

	return &ProcessRenderer{
		cmd:    cmd,
		stdin:  stdin,
		events: NewSource(stdout),
		logger: logger,
	}, nil
}

func (r *ProcessRenderer) WriteFrame(frame []byte) error {
	if _, err := r.stdin.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (r *ProcessRenderer) Events() *Source { return r.events }

// Close kills the renderer and reaps it. The kill is unconditional; a bar
// has no state worth a graceful shutdown.
func (r *ProcessRenderer) Close() error {
	_ = r.stdin.Close()
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	err := r.cmd.Wait()
	r.logger.Debug("renderer terminated", zap.Error(err))
	return nil
}
