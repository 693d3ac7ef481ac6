package modules

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/lemonbar/manager/internal/bar"
	"github.com/lemonbar/manager/internal/markup"
	"go.uber.org/zap"
)

const bspwmEventPrefix = "focus_desktop_"

// BSPWM renders the desktops of one monitor. It owns a `bspc subscribe
// report` child process whose stdout is exposed as a Source, so the
// scheduler wakes the module on every window-manager event instead of
// polling.
type BSPWM struct {
	monitor string
	source  *bar.Source
	cmd     *exec.Cmd
	logger  *zap.Logger

	rendered string
	spawn    func(args ...string) error
}

// NewBSPWM starts the subscription process.
func NewBSPWM(monitor string, logger *zap.Logger) (*BSPWM, error) {
	cmd := exec.Command("bspc", "subscribe", "report")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bspc stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start bspc subscribe: %w", err)
	}
	return &BSPWM{
		monitor: monitor,
		source:  bar.NewSource(stdout),
		cmd:     cmd,
		logger:  logger,
		spawn:   spawnDetached,
	}, nil
}

// Source exposes the subscription stream for the scheduler to wait on.
func (b *BSPWM) Source() *bar.Source { return b.source }

// Close stops the subscription process. The module owns it; the scheduler
// does not.
func (b *BSPWM) Close() error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}
	_ = b.cmd.Process.Kill()
	_ = b.cmd.Wait()
	return nil
}

// Output drains the subscription to the newest report line; every report
// carries the full state, so intermediate ones are obsolete. With nothing
// pending it re-renders the last known state.
func (b *BSPWM) Output() (string, error) {
	var line string
	fresh := false
	for {
		next, ok := b.source.TryNext()
		if !ok {
			break
		}
		line, fresh = next, true
	}
	if !fresh {
		if err := b.source.Err(); err != nil {
			return "", fmt.Errorf("bspwm subscription: %w", err)
		}
		return b.rendered, nil
	}
	b.rendered = renderReport(b.monitor, line)
	return b.rendered, nil
}

func (b *BSPWM) HandleEvent(event string) (bool, error) {
	name, ok := strings.CutPrefix(event, bspwmEventPrefix)
	if !ok {
		return false, nil
	}
	if err := b.spawn("bspc", "desktop", "--focus", name+".local"); err != nil {
		b.logger.Warn("failed to focus desktop",
			zap.String("desktop", name), zap.Error(err))
	}
	// The focus change comes back through the subscription; no need to
	// invalidate here.
	return false, nil
}

type desktop struct {
	name  string
	state byte
}

// parseReport extracts the desktops belonging to one monitor from a bspwm
// report line. The line is colon-separated items; M/m items switch the
// current monitor, OoFfUu items are desktops in
// focused/occupied/free/urgent states.
func parseReport(monitor, report string) []desktop {
	report = strings.TrimPrefix(report, "W")

	var desktops []desktop
	onMonitor := false
	for _, item := range strings.Split(report, ":") {
		if item == "" {
			continue
		}
		k, v := item[0], item[1:]
		switch {
		case k == 'M' || k == 'm':
			onMonitor = v == monitor
		case onMonitor && strings.IndexByte("OoFfUu", k) >= 0:
			desktops = append(desktops, desktop{name: v, state: k})
		}
	}
	return desktops
}

func renderReport(monitor, report string) string {
	var b strings.Builder
	for _, d := range parseReport(monitor, report) {
		b.WriteString(markup.ClickArea(bspwmEventPrefix+d.name, formatDesktop(d)))
	}
	return b.String()
}

func formatDesktop(d desktop) string {
	label := "  " + d.name + "  "
	switch d.state {
	case 'O', 'F': // focused
		return markup.Underline(label)
	case 'U': // focused, urgent
		return markup.Bg("#CF6A4C", label)
	case 'o': // occupied
		return markup.Bg("#222", label)
	case 'u': // urgent
		return markup.Bg("#F00", label)
	default: // free
		return label
	}
}
