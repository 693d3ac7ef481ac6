package modules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
	"github.com/lemonbar/manager/pkg/config"
)

func TestBuildPreservesOrder(t *testing.T) {
	cfgs := []config.ModuleConfig{
		{Type: "const", Name: "left", Value: "%{l}"},
		{Type: "clock", Name: "clock"},
		{Type: "launcher", Name: "power", Label: "off", Command: []string{"true"}},
	}

	states, closers, err := Build(cfgs, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, closers)
	require.Len(t, states, 3)
	assert.Equal(t, "left", states[0].Name)
	assert.Equal(t, "clock", states[1].Name)
	assert.Equal(t, "power", states[2].Name)
}

func TestBuildNamesUnnamedModules(t *testing.T) {
	states, _, err := Build([]config.ModuleConfig{{Type: "const", Value: "x"}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "const-0", states[0].Name)
}

func TestBuildClockDefaultsToMinuteInterval(t *testing.T) {
	states, _, err := Build([]config.ModuleConfig{{Type: "clock"}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, time.Minute, states[0].WaitTime)
}

func TestBuildIntervalOverridesDefault(t *testing.T) {
	states, _, err := Build([]config.ModuleConfig{
		{Type: "clock", Interval: 5 * time.Second},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, states[0].WaitTime)
}

func TestBuildCronSchedule(t *testing.T) {
	states, _, err := Build([]config.ModuleConfig{
		{Type: "const", Value: "x", Schedule: "*/5 * * * *"},
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, states[0].Schedule)
	assert.Equal(t, time.Duration(0), states[0].WaitTime,
		"a schedule replaces the interval trigger")
}

func TestBuildRejectsBadSchedule(t *testing.T) {
	_, _, err := Build([]config.ModuleConfig{
		{Type: "const", Value: "x", Schedule: "not a cron spec"},
	}, zap.NewNop())
	assert.ErrorContains(t, err, "bad schedule")
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, _, err := Build([]config.ModuleConfig{{Type: "frobnicator"}}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown type")
}

func TestBuildRejectsLauncherWithoutCommand(t *testing.T) {
	_, _, err := Build([]config.ModuleConfig{{Type: "launcher", Label: "x"}}, zap.NewNop())
	assert.ErrorContains(t, err, "needs a command")
}

func TestBuiltStatesSatisfyModuleContract(t *testing.T) {
	states, _, err := Build([]config.ModuleConfig{{Type: "const", Value: "hi"}}, zap.NewNop())
	require.NoError(t, err)

	var m bar.Module = states[0].Module
	out, err := m.Output()
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}
