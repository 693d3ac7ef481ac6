package modules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
)

const bspwmReport = "WMDVI-D-0:OI:oII:fIII:uIV:mDP-1:OV:fVI"

func testBSPWM(monitor string) *BSPWM {
	return &BSPWM{
		monitor: monitor,
		source:  bar.NewPushSource(),
		logger:  zap.NewNop(),
		spawn:   func(args ...string) error { return nil },
	}
}

func TestParseReportFiltersByMonitor(t *testing.T) {
	desktops := parseReport("DVI-D-0", bspwmReport)
	require.Len(t, desktops, 4)
	assert.Equal(t, desktop{name: "I", state: 'O'}, desktops[0])
	assert.Equal(t, desktop{name: "II", state: 'o'}, desktops[1])
	assert.Equal(t, desktop{name: "III", state: 'f'}, desktops[2])
	assert.Equal(t, desktop{name: "IV", state: 'u'}, desktops[3])

	other := parseReport("DP-1", bspwmReport)
	require.Len(t, other, 2)
	assert.Equal(t, "V", other[0].name)
}

func TestRenderReportMarkup(t *testing.T) {
	out := renderReport("DVI-D-0", bspwmReport)
	assert.Contains(t, out, "%{A:focus_desktop_I:}")
	assert.Contains(t, out, "%{+u}%{+o}  I  %{-u}%{-o}", "focused desktop is underlined")
	assert.Contains(t, out, "%{B#222}  II  %{B-}", "occupied desktop gets a background")
	assert.Contains(t, out, "  III  ", "free desktop is plain")
	assert.Contains(t, out, "%{B#F00}  IV  %{B-}", "urgent desktop is highlighted")
}

func TestBSPWMOutputUsesNewestReport(t *testing.T) {
	b := testBSPWM("DVI-D-0")
	require.True(t, b.source.Push("WMDVI-D-0:fI"))
	require.True(t, b.source.Push("WMDVI-D-0:OI"))

	out, err := b.Output()
	require.NoError(t, err)
	assert.Contains(t, out, "%{+u}%{+o}", "stale first report must be superseded")
}

func TestBSPWMOutputKeepsLastRenderingWhenIdle(t *testing.T) {
	b := testBSPWM("DVI-D-0")
	require.True(t, b.source.Push("WMDVI-D-0:OI"))

	first, err := b.Output()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Nothing new buffered; output stays stable without blocking.
	again, err := b.Output()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestBSPWMOutputFailsWhenSubscriptionDies(t *testing.T) {
	b := testBSPWM("DVI-D-0")
	b.source = bar.NewSource(strings.NewReader("")) // immediate EOF

	require.Eventually(t, b.source.Ready, waitFor, tick)

	_, err := b.Output()
	assert.ErrorContains(t, err, "bspwm subscription")
}

func TestBSPWMHandleEventFocusesDesktop(t *testing.T) {
	var gotArgs []string
	b := testBSPWM("DVI-D-0")
	b.spawn = func(args ...string) error {
		gotArgs = args
		return nil
	}

	invalidate, err := b.HandleEvent("focus_desktop_III")
	require.NoError(t, err)
	assert.False(t, invalidate, "redraw arrives via the subscription")
	assert.Equal(t, []string{"bspc", "desktop", "--focus", "III.local"}, gotArgs)
}

func TestBSPWMIgnoresForeignEvents(t *testing.T) {
	b := testBSPWM("DVI-D-0")
	b.spawn = func(args ...string) error {
		t.Fatal("spawn must not be invoked")
		return nil
	}

	invalidate, err := b.HandleEvent("toggle_clock")
	require.NoError(t, err)
	assert.False(t, invalidate)
}
