package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPixelRatio(t *testing.T) {
	assert.Equal(t, float32(1), ClampPixelRatio(1))
	assert.Equal(t, float32(1.5), ClampPixelRatio(1.5))
	assert.Equal(t, float32(2), ClampPixelRatio(2))
	assert.Equal(t, float32(2), ClampPixelRatio(3))
	assert.Equal(t, float32(1), ClampPixelRatio(0))
}

func TestViewport_Aspect(t *testing.T) {
	assert.InDelta(t, 1.3333, Viewport{Width: 800, Height: 600}.Aspect(), 1e-4)
	assert.Equal(t, float32(1), Viewport{Width: 800}.Aspect())
}

func newResizeApp(r *HeadlessRenderer) *App {
	return NewAppBuilder().
		UseModule(ViewportModule{Width: 800, Height: 600, DevicePixelRatio: 1}).
		UseModule(AssetServerModule{Workers: 1}).
		UseModule(HeadlessRendererModule{Renderer: r}).
		Build()
}

func TestHandleResize_UpdatesCamerasAndRenderer(t *testing.T) {
	r := NewHeadlessRenderer()
	app := newResizeApp(r)
	t.Cleanup(app.Shutdown)

	cmd := app.Commands()
	eid := cmd.AddEntity(NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100))
	app.FlushCommands()
	cam, ok := GetComponent[CameraComponent](cmd, eid)
	require.True(t, ok)
	before := cam.ProjectionMatrix()

	app.HandleResize(1280, 720, 2)

	cam, _ = GetComponent[CameraComponent](cmd, eid)
	assert.InDelta(t, 1280.0/720.0, cam.Aspect, 1e-5)
	assert.NotEqual(t, before, cam.ProjectionMatrix())
	want := NewPerspectiveCamera(75, 1280.0/720.0, 0.1, 100)
	assert.Equal(t, want.ProjectionMatrix(), cam.ProjectionMatrix())
	w, h := r.Size()
	assert.Equal(t, [2]int{1280, 720}, [2]int{w, h})
	assert.Equal(t, float32(2), r.PixelRatio())

	vp, _ := Resource[Viewport](app)
	assert.Equal(t, Viewport{Width: 1280, Height: 720, DevicePixelRatio: 2}, *vp)
}

func TestHandleResize_SameAspectKeepsProjection(t *testing.T) {
	r := NewHeadlessRenderer()
	app := newResizeApp(r)
	t.Cleanup(app.Shutdown)

	cmd := app.Commands()
	eid := cmd.AddEntity(NewPerspectiveCamera(75, 800.0/600.0, 0.1, 100))
	app.FlushCommands()
	cam, _ := GetComponent[CameraComponent](cmd, eid)
	before := cam.ProjectionMatrix()

	app.HandleResize(1024, 768, 1)

	cam, _ = GetComponent[CameraComponent](cmd, eid)
	assert.Equal(t, before, cam.ProjectionMatrix())
	w, h := r.Size()
	assert.Equal(t, [2]int{1024, 768}, [2]int{w, h})
}

func TestHandleResize_IgnoresEmptySize(t *testing.T) {
	r := NewHeadlessRenderer()
	app := newResizeApp(r)
	t.Cleanup(app.Shutdown)

	app.HandleResize(0, 0, 1)
	app.HandleResize(-5, 600, 1)

	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	vp, _ := Resource[Viewport](app)
	assert.Equal(t, 800, vp.Width)
}

func TestHandleResize_ClampsDensity(t *testing.T) {
	for _, tc := range []struct {
		dpr, want float32
	}{{1, 1}, {2, 2}, {3, 2}} {
		r := NewHeadlessRenderer()
		app := newResizeApp(r)
		app.HandleResize(640, 480, tc.dpr)
		assert.Equal(t, tc.want, r.PixelRatio())
		app.Shutdown()
	}
}
