package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModule struct {
	installed bool
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
}

type spawningModule struct{}

func (spawningModule) Install(app *App, cmd *Commands) {
	cmd.AddEntity(NameComponent{Name: "spawned"})
}

func TestAppBuilder_InstallsModulesInOrder(t *testing.T) {
	m1, m2 := &MockModule{}, &MockModule{}

	app := NewAppBuilder().UseModule(m1).UseModule(m2).Build()

	require.NotNil(t, app)
	assert.True(t, m1.installed)
	assert.True(t, m2.installed)
	assert.Equal(t, LoopIdle, app.State())
}

func TestAppBuilder_FlushesSpawnedEntities(t *testing.T) {
	app := NewAppBuilder().UseModule(spawningModule{}).Build()

	var names []string
	MakeQuery1[NameComponent](app.Commands()).Map(func(_ EntityId, n *NameComponent) bool {
		names = append(names, n.Name)
		return true
	})
	assert.Equal(t, []string{"spawned"}, names)
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	custom := Stage{Name: "Physics"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "update") }))
	app.UseSystem(System(func() { order = append(order, "physics") }).InStage(custom))
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))

	require.NoError(t, app.RunFrames(1))
	assert.Equal(t, []string{"update", "physics", "post"}, order)
}

func TestApp_UseStage_unknownTarget(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "Early"}, BeforeStage(Stage{Name: "Missing"}))
	})
}

func TestApp_UseSystem_unknownStage(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Stage Missing doesn't exist", func() {
		app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"}))
	})
}
