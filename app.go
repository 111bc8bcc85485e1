package gekko

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
)

type systemFn any

// LoopState is the state of the frame loop. The loop only moves forward:
// idle -> running -> stopped.
type LoopState int32

const (
	LoopIdle LoopState = iota
	LoopRunning
	LoopStopped
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopStopped:
		return "stopped"
	}
	return fmt.Sprintf("LoopState(%d)", int32(s))
}

var (
	ErrLoopStopped = errors.New("gekko: frame loop already stopped")
	ErrLoopBusy    = errors.New("gekko: frame loop already running")
)

// App is the application context: resources, scheduled systems and the entity store.
// Event handlers and systems reach shared state only through it.
type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	ecs       *Ecs

	loopState     atomic.Int32
	inLoop        atomic.Bool
	stopRequested atomic.Bool
	frames        uint64
	shutdownHooks []func()

	// Command Buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingComp
	pendingCompRemovals []pendingComp
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingComp struct {
	eid        EntityId
	components []any
}

func newApp() *App {
	ecs := MakeEcs()
	app := &App{
		stages:    defaultStages(),
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
	for _, stage := range app.stages {
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// State reports the frame loop state.
func (app *App) State() LoopState {
	return LoopState(app.loopState.Load())
}

// Running reports whether the frame loop has started and not stopped.
func (app *App) Running() bool {
	return app.State() == LoopRunning
}

// Frames returns the number of completed ticks.
func (app *App) Frames() uint64 {
	return app.frames
}

// Stop asks the loop to finish after the current tick. Safe to call from any goroutine.
func (app *App) Stop() {
	app.stopRequested.Store(true)
	app.loopState.CompareAndSwap(int32(LoopIdle), int32(LoopStopped))
}

// Run ticks until Stop is called or ctx is cancelled. Each tick runs every stage in
// order and then chains straight into the next one; the host's event polling inside
// the Prelude stage is what paces the loop.
func (app *App) Run(ctx context.Context) error {
	if err := app.enterLoop(); err != nil {
		return err
	}
	defer app.inLoop.Store(false)

	app.Logger().Infof("Frame loop running")
	for {
		if err := ctx.Err(); err != nil {
			app.finish()
			return err
		}
		if app.stopRequested.Load() {
			app.finish()
			return nil
		}
		app.tick()
	}
}

// RunFrames runs exactly n ticks (fewer if Stop is requested) and leaves the loop running.
func (app *App) RunFrames(n int) error {
	if err := app.enterLoop(); err != nil {
		return err
	}
	defer app.inLoop.Store(false)

	for i := 0; i < n; i++ {
		if app.stopRequested.Load() {
			app.finish()
			return nil
		}
		app.tick()
	}
	return nil
}

func (app *App) enterLoop() error {
	if app.State() == LoopStopped {
		return ErrLoopStopped
	}
	if !app.inLoop.CompareAndSwap(false, true) {
		return ErrLoopBusy
	}
	app.loopState.CompareAndSwap(int32(LoopIdle), int32(LoopRunning))
	return nil
}

func (app *App) finish() {
	app.loopState.Store(int32(LoopStopped))
	app.Logger().Infof("Frame loop stopped after %d frames", app.frames)
}

func (app *App) tick() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
	app.frames++
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type T registered on the app.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystem resolves every pointer argument of the system from the resources
// (or a fresh *Commands) and invokes it.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	// Removals first so nothing is added to a dead entity.
	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
