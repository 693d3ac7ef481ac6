package modules

import (
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/lemonbar/manager/internal/markup"
	"go.uber.org/zap"
)

var levelPattern = regexp.MustCompile(`(\d{1,3})%`)

// Volume is an ALSA mixer control rendered as a clickable slider: each
// increment is its own click area, so clicking anywhere on the slider sets
// the level directly.
type Volume struct {
	device     string
	increments int
	level      float64 // 0..1
	logger     *zap.Logger

	runMixer func(args ...string) (string, error)
}

// NewVolume queries the current level once so the first frame is accurate.
func NewVolume(device string, increments int, logger *zap.Logger) (*Volume, error) {
	v := &Volume{
		device:     device,
		increments: increments,
		logger:     logger,
		runMixer:   runAmixer,
	}
	level, err := v.readLevel()
	if err != nil {
		return nil, fmt.Errorf("read volume for %s: %w", device, err)
	}
	v.level = level
	return v, nil
}

func runAmixer(args ...string) (string, error) {
	out, err := exec.Command("amixer", args...).Output()
	return string(out), err
}

// parseLevel averages every percentage amixer reports across the device's
// channels into a 0..1 fraction.
func parseLevel(out string) (float64, error) {
	matches := levelPattern.FindAllStringSubmatch(out, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("no volume levels in amixer output")
	}
	var sum int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("parse level %q: %w", m[1], err)
		}
		sum += n
	}
	return float64(sum) / float64(len(matches)*100), nil
}

func (v *Volume) readLevel() (float64, error) {
	out, err := v.runMixer("get", v.device)
	if err != nil {
		return 0, err
	}
	return parseLevel(out)
}

func (v *Volume) eventPrefix() string {
	return "set_volume_" + v.device + "_"
}

func (v *Volume) Output() (string, error) {
	filled := int(math.Round(float64(v.increments) * v.level))

	var b strings.Builder
	b.WriteString("")
	for i := 0; i <= v.increments; i++ {
		seg := "  "
		if filled >= i {
			seg = "--"
		}
		b.WriteString(markup.ClickArea(v.eventPrefix()+strconv.Itoa(i), seg))
	}
	b.WriteString(" ")
	return b.String(), nil
}

func (v *Volume) HandleEvent(event string) (bool, error) {
	rest, ok := strings.CutPrefix(event, v.eventPrefix())
	if !ok {
		return false, nil
	}
	step, err := strconv.Atoi(rest)
	if err != nil {
		v.logger.Warn("malformed volume event", zap.String("event", event))
		return false, nil
	}

	percent := float64(step) / float64(v.increments) * 100
	if _, err := v.runMixer("set", v.device, fmt.Sprintf("%.0f%%", percent)); err != nil {
		return false, fmt.Errorf("set volume on %s: %w", v.device, err)
	}
	v.level = percent / 100
	// Redraw the slider at the new level right away.
	return true, nil
}
