package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestFromContextWithoutCollector(t *testing.T) {
	collector := FromContext(context.Background())

	// Must be safe to use without panicking.
	timer := collector.Start("anything")
	timer.Child("nested").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}

func TestTimingCollectorNesting(t *testing.T) {
	collector := NewTimingCollector()

	load := collector.Start("load rates.db")
	decode := load.Child("decode")
	decode.End()
	validate := collector.Start("validate")
	validate.End()
	load.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "load rates.db: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ decode: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ validate: "))
}

func TestCollectorRoundTripsThroughContext(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	timer := FromContext(ctx).Start("op")
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.True(t, strings.HasPrefix(buf.String(), "op: "))
}

func TestEmptyCollectorReportsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, "", buf.String())
}
