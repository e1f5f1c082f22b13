package reembed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressTrackerFullRun(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Increment(25)
	tracker.Increment(25)
	tracker.Increment(50)

	assert.Greater(t, tracker.Elapsed(), time.Duration(0))
	assert.Contains(t, buf.String(), "100/100")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestProgressTrackerFinish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Update(75)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "100/100", "finish reports the full total")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "\n", "finish ends the progress line")
}

func TestProgressTrackerZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0")
}

func TestProgressTrackerCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Increment(150)

	assert.Contains(t, buf.String(), "100/100 (100.0%)")
}

func TestProgressTrackerRate(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1000, 100)

	tracker.Start()
	time.Sleep(20 * time.Millisecond)
	tracker.Update(100)
	tracker.Finish()

	assert.Contains(t, buf.String(), "assets/s")
}

func TestProgressTrackerBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Increment(10)
	tracker.Update(50)
	tracker.Finish()

	assert.Empty(t, buf.String(), "nothing is printed before Start")
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTrackerReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1000, 100)
	tracker.Start()

	steps := []struct {
		current int
		printed bool
	}{
		{50, false},  // under the interval
		{100, true},  // exactly one interval
		{150, false}, // only 50 since the last report
		{250, true},  // 150 since the last report
	}
	for _, step := range steps {
		buf.Reset()
		tracker.Update(step.current)
		if step.printed {
			assert.NotEmpty(t, buf.String(), "Update(%d)", step.current)
		} else {
			assert.Empty(t, buf.String(), "Update(%d)", step.current)
		}
	}
}

func TestProgressTrackerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 5000, 1000)

	tracker.Start()
	tracker.Update(2500)
	tracker.Update(5000)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\r")
	require.NotEmpty(t, lines)

	last := lines[len(lines)-1]
	assert.Contains(t, last, "Progress: 5000/5000")
	assert.Contains(t, last, "(100.0%)")
	assert.Contains(t, last, "assets/s")
}
