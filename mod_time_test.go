package gekko

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeModule_ManualClock(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	app := NewAppBuilder().UseModule(TimeModule{Clock: clock}).Build()

	require.NoError(t, app.RunFrames(1))
	tm, ok := Resource[Time](app)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), tm.Elapsed())

	clock.Advance(250 * time.Millisecond)
	require.NoError(t, app.RunFrames(1))
	assert.Equal(t, 250*time.Millisecond, tm.Dt)

	clock.Advance(10*time.Second - 250*time.Millisecond)
	require.NoError(t, app.RunFrames(1))
	assert.InDelta(t, 10.0, tm.ElapsedSeconds(), 1e-6)
}

func TestTimeModule_StepClock(t *testing.T) {
	clock := NewStepClock(time.Unix(0, 0), 16*time.Millisecond)
	app := NewAppBuilder().UseModule(TimeModule{Clock: clock}).Build()

	require.NoError(t, app.RunFrames(3))
	tm, _ := Resource[Time](app)
	assert.Equal(t, 16*time.Millisecond, tm.Dt)
	assert.Equal(t, 32*time.Millisecond, tm.Elapsed())
}
