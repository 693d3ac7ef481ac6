package modules

import (
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
	"github.com/lemonbar/manager/pkg/config"
)

const defaultIncrements = 20

// Build constructs the ordered module states from configuration. The
// order in the config file is the order on the bar and the event dispatch
// order. The returned closers release resources owned by modules (e.g.
// the bspwm subscription process) and must be closed on shutdown.
func Build(cfgs []config.ModuleConfig, logger *zap.Logger) ([]*bar.State, []io.Closer, error) {
	states := make([]*bar.State, 0, len(cfgs))
	var closers []io.Closer

	fail := func(err error) ([]*bar.State, []io.Closer, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, nil, err
	}

	for i, mc := range cfgs {
		name := mc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", mc.Type, i)
		}

		var (
			mod  bar.Module
			opts []bar.StateOption
		)
		switch mc.Type {
		case "const":
			mod = NewConst(mc.Value)
		case "clock":
			mod = NewClock()
			opts = append(opts, bar.WithWaitTime(time.Minute))
		case "volume":
			increments := mc.Increments
			if increments <= 0 {
				increments = defaultIncrements
			}
			v, err := NewVolume(mc.Device, increments, logger.Named(name))
			if err != nil {
				return fail(fmt.Errorf("module %s: %w", name, err))
			}
			mod = v
		case "bspwm":
			b, err := NewBSPWM(mc.Monitor, logger.Named(name))
			if err != nil {
				return fail(fmt.Errorf("module %s: %w", name, err))
			}
			closers = append(closers, b)
			mod = b
			opts = append(opts, bar.WithSource(b.Source()))
		case "launcher":
			if len(mc.Command) == 0 {
				return fail(fmt.Errorf("module %s: launcher needs a command", name))
			}
			mod = NewLauncher(mc.Label, mc.Command, logger.Named(name))
		default:
			return fail(fmt.Errorf("module %s: unknown type %q", name, mc.Type))
		}

		// Generic triggers apply on top of per-type defaults.
		if mc.Interval > 0 {
			opts = append(opts, bar.WithWaitTime(mc.Interval))
		}
		if mc.Schedule != "" {
			sched, err := cron.ParseStandard(mc.Schedule)
			if err != nil {
				return fail(fmt.Errorf("module %s: bad schedule %q: %w", name, mc.Schedule, err))
			}
			opts = append(opts, bar.WithSchedule(sched))
		}

		states = append(states, bar.NewState(name, mod, opts...))
	}
	return states, closers, nil
}
