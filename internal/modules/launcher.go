package modules

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/lemonbar/manager/internal/markup"
	"go.uber.org/zap"
)

// Launcher is a clickable label that spawns a command when clicked. The
// command runs detached; its outcome never feeds back into the bar.
type Launcher struct {
	label   string
	command []string
	event   string
	logger  *zap.Logger

	spawn func(args ...string) error
}

func NewLauncher(label string, command []string, logger *zap.Logger) *Launcher {
	return &Launcher{
		label:   label,
		command: command,
		event:   strings.TrimSpace(label) + "_click",
		logger:  logger,
		spawn:   spawnDetached,
	}
}

func (l *Launcher) Output() (string, error) {
	return markup.ClickArea(l.event, l.label), nil
}

func (l *Launcher) HandleEvent(event string) (bool, error) {
	if event != l.event {
		return false, nil
	}
	l.logger.Info("launching", zap.Strings("command", l.command))
	if err := l.spawn(l.command...); err != nil {
		return false, fmt.Errorf("launch %q: %w", l.command[0], err)
	}
	return false, nil
}

// spawnDetached starts a command without waiting for it; a goroutine reaps
// it so finished children do not linger as zombies.
func spawnDetached(args ...string) error {
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
