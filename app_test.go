package gekko

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := newApp()
	r1 := NewMockResource1("r1")
	r2 := NewMockResource2("r2")

	app.addResources(r1, r2)

	got1, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Same(t, r1, got1)
	got2, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Equal(t, "r2", got2.name)
}

func TestApp_addResources_duplicatePanics(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("a"))

	assert.PanicsWithValue(t, "*gekko.MockResource1 is already in resources", func() {
		app.addResources(NewMockResource1("b"))
	})
}

func TestApp_addResources_valuePanics(t *testing.T) {
	app := newApp()
	assert.PanicsWithValue(t, "resource gekko.MockResource1 must be a pointer", func() {
		app.addResources(MockResource1{})
	})
}

func TestApp_callSystem_injectsResources(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("r1"))

	var seen string
	var gotCommands bool
	app.callSystem(func(cmd *Commands, r *MockResource1) {
		gotCommands = cmd != nil && cmd.app == app
		seen = r.name
	})

	assert.True(t, gotCommands)
	assert.Equal(t, "r1", seen)
}

func TestApp_callSystem_missingDependencyPanics(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() {
		app.callSystem(func(r *MockResource2) {})
	})
}

func TestApp_RunFramesRunsStagesInOrder(t *testing.T) {
	app := newApp()
	var order []string
	for _, stage := range []Stage{Render, Prelude, Update, PreRender, PostUpdate, PreUpdate} {
		stage := stage
		app.UseSystem(System(func() { order = append(order, stage.Name) }).InStage(stage))
	}

	require.NoError(t, app.RunFrames(1))

	assert.Equal(t, []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render"}, order)
	assert.Equal(t, uint64(1), app.Frames())
	assert.Equal(t, LoopRunning, app.State())
	assert.True(t, app.Running())
}

func TestApp_CommandsFlushBetweenStages(t *testing.T) {
	app := newApp()
	var eid EntityId
	var seenInUpdate bool
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.App().Frames() == 0 {
			eid = cmd.AddEntity(NameComponent{Name: "late"})
		}
	}).InStage(PreUpdate))
	app.UseSystem(System(func(cmd *Commands) {
		_, seenInUpdate = GetComponent[NameComponent](cmd, eid)
	}).InStage(Update))

	require.NoError(t, app.RunFrames(1))

	assert.True(t, seenInUpdate)
}

func TestApp_StopEndsRun(t *testing.T) {
	app := newApp()
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.App().Frames() == 4 {
			cmd.Stop()
		}
	}))

	err := app.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(5), app.Frames())
	assert.Equal(t, LoopStopped, app.State())
	assert.False(t, app.Running())
}

func TestApp_RunCancelled(t *testing.T) {
	app := newApp()
	ctx, cancel := context.WithCancel(context.Background())
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.App().Frames() == 2 {
			cancel()
		}
	}))

	err := app.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(3), app.Frames())
	assert.Equal(t, LoopStopped, app.State())
}

func TestApp_RunAfterStop(t *testing.T) {
	app := newApp()
	app.Stop()

	assert.Equal(t, LoopStopped, app.State())
	assert.ErrorIs(t, app.Run(context.Background()), ErrLoopStopped)
	assert.ErrorIs(t, app.RunFrames(1), ErrLoopStopped)
	assert.Zero(t, app.Frames())
}

func TestApp_NestedRunIsBusy(t *testing.T) {
	app := newApp()
	var nested error
	app.UseSystem(System(func(cmd *Commands) {
		nested = cmd.App().RunFrames(1)
	}))

	require.NoError(t, app.RunFrames(1))

	assert.ErrorIs(t, nested, ErrLoopBusy)
	assert.Equal(t, uint64(1), app.Frames())
}

func TestApp_ShutdownRunsHooksInReverse(t *testing.T) {
	app := newApp()
	var order []int
	app.OnShutdown(func() { order = append(order, 1) })
	app.OnShutdown(func() { order = append(order, 2) })

	app.Shutdown()
	app.Shutdown()

	assert.Equal(t, []int{2, 1}, order)
	assert.Equal(t, LoopStopped, app.State())
}

func TestLoopState_String(t *testing.T) {
	assert.Equal(t, "idle", LoopIdle.String())
	assert.Equal(t, "running", LoopRunning.String())
	assert.Equal(t, "stopped", LoopStopped.String())
	assert.Equal(t, "LoopState(7)", LoopState(7).String())
}
