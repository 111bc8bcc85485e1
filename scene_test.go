package gekko

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/gekko-pbr/render/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeShowcaseTextures creates tiny stand-ins for every image the showcase loads.
// Decoding sniffs content, so PNG bytes behind a .jpg name are fine.
func writeShowcaseTextures(t *testing.T, root string) {
	t.Helper()
	grey := solid(color.RGBA{128, 128, 128, 255})
	for _, dir := range []string{"textures/door", "textures/matcaps", "textures/environmentMaps/0"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	for _, name := range []string{"color", "alpha", "ambientOcclusion", "height", "metalness", "normal", "roughness"} {
		writePNG(t, filepath.Join(root, "textures/door"), name+".jpg", 2, 2, grey)
	}
	for i := 1; i <= matcapCount; i++ {
		writePNG(t, filepath.Join(root, "textures/matcaps"), fmt.Sprintf("%d.png", i), 2, 2, grey)
	}
	for _, face := range envMapFaces {
		writePNG(t, root, face, 2, 2, grey)
	}
}

type showcase struct {
	app      *App
	clock    *ManualClock
	renderer *HeadlessRenderer
	server   *AssetServer
	scene    *MaterialsScene
}

func newShowcase(t *testing.T) *showcase {
	t.Helper()
	root := t.TempDir()
	writeShowcaseTextures(t, root)

	s := &showcase{
		clock:    NewManualClock(time.Unix(1000, 0)),
		renderer: NewHeadlessRenderer(),
	}
	s.app = NewAppBuilder().
		UseModule(TimeModule{Clock: s.clock}).
		UseModule(InputModule{}).
		UseModule(ViewportModule{Width: 800, Height: 600, DevicePixelRatio: 1}).
		UseModule(AssetServerModule{Root: root, Workers: 2}).
		UseModule(HeadlessRendererModule{Renderer: s.renderer}).
		UseModule(DebugPanelModule{}).
		UseModule(OrbitControlsModule{DampingFactor: 0.05}).
		UseModule(MaterialsSceneModule{}).
		Build()
	t.Cleanup(s.app.Shutdown)

	var ok bool
	s.server, ok = Resource[AssetServer](s.app)
	require.True(t, ok)
	s.scene, ok = Resource[MaterialsScene](s.app)
	require.True(t, ok)
	return s
}

func (s *showcase) transform(t *testing.T, name string) *TransformComponent {
	t.Helper()
	eid, ok := s.scene.Entity(name)
	require.True(t, ok, name)
	tr, ok := GetComponent[TransformComponent](s.app.Commands(), eid)
	require.True(t, ok, name)
	return tr
}

func (s *showcase) camera(t *testing.T) *CameraComponent {
	t.Helper()
	eid, ok := s.scene.Entity("camera")
	require.True(t, ok)
	cam, ok := GetComponent[CameraComponent](s.app.Commands(), eid)
	require.True(t, ok)
	return cam
}

func TestMaterialsScene_InitialState(t *testing.T) {
	s := newShowcase(t)

	cam := s.camera(t)
	assert.Equal(t, float32(75), cam.Fov)
	assert.Equal(t, float32(0.1), cam.Near)
	assert.Equal(t, float32(100), cam.Far)
	assert.InDelta(t, 800.0/600.0, cam.Aspect, 1e-4)
	assert.Equal(t, mgl32.Vec3{1, 1, 2}, cam.Position)

	w, h := s.renderer.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.Equal(t, float32(1), s.renderer.PixelRatio())

	assert.Equal(t, mgl32.Vec3{-1.5, 0, 0}, s.transform(t, "sphere").Position)
	assert.Equal(t, mgl32.Vec3{-1.5, 1.5, 0}, s.transform(t, "sphereMatcap").Position)
	assert.Equal(t, mgl32.Vec3{1.5, 0, 0}, s.transform(t, "plane").Position)
	assert.Equal(t, mgl32.Vec3{}, s.transform(t, "torus").Position)

	standard, ok := s.server.StandardMaterial(s.scene.Standard)
	require.True(t, ok)
	assert.True(t, standard.Transparent)
	assert.Equal(t, float32(0), standard.Metalness)
	assert.Equal(t, float32(1), standard.Roughness)
	assert.Equal(t, s.scene.Door, standard.Maps)

	matcap, ok := s.server.MatcapMaterial(s.scene.Matcap)
	require.True(t, ok)
	require.Len(t, s.scene.Matcaps, 8)
	assert.Equal(t, s.scene.Matcaps[7], matcap.Matcap)
}

func TestMaterialsScene_CameraKeepsDampingAcrossFrames(t *testing.T) {
	s := newShowcase(t)
	require.NoError(t, s.app.RunFrames(2))

	eid, ok := s.scene.Entity("camera")
	require.True(t, ok)
	controls, ok := GetComponent[OrbitControls](s.app.Commands(), eid)
	require.True(t, ok)
	assert.True(t, controls.EnableDamping)
	assert.Equal(t, float32(0.05), controls.DampingFactor)
}

func TestMaterialsScene_PlaneHasSecondUVSet(t *testing.T) {
	s := newShowcase(t)

	eid, _ := s.scene.Entity("plane")
	mesh, ok := GetComponent[MeshComponent](s.app.Commands(), eid)
	require.True(t, ok)
	g, ok := s.server.Geometry(mesh.Geometry)
	require.True(t, ok)

	uv, ok := g.Attribute("uv")
	require.True(t, ok)
	uv2, ok := g.Attribute("uv2")
	require.True(t, ok)
	assert.Equal(t, uv, uv2)
	assert.Equal(t, 10, g.VertexCount())
}

func TestMaterialsScene_SunTargetsPlane(t *testing.T) {
	s := newShowcase(t)

	sunId, ok := s.scene.Entity("sun")
	require.True(t, ok)
	planeId, _ := s.scene.Entity("plane")
	sun, ok := GetComponent[LightComponent](s.app.Commands(), sunId)
	require.True(t, ok)
	assert.True(t, sun.HasTarget)
	assert.Equal(t, planeId, sun.Target)
	assert.Equal(t, float32(0.5), sun.Intensity)
	assert.InDelta(t, 0xeb/255.0, sun.Color.X(), 1e-6)

	require.NoError(t, s.app.RunFrames(1))

	want := mgl32.Vec3{0, 4, 4}.Sub(mgl32.Vec3{1.5, 0, 0}).Normalize()
	dir := s.renderer.LastFrame.Uniform.LightDir
	assert.InDelta(t, want.X(), dir[0], 1e-5)
	assert.InDelta(t, want.Y(), dir[1], 1e-5)
	assert.InDelta(t, want.Z(), dir[2], 1e-5)
	assert.InDelta(t, 0.5, dir[3], 1e-6)

	ambient := s.renderer.LastFrame.Uniform.Ambient
	assert.InDelta(t, 0xeb/255.0*0.2, ambient[0], 1e-6)
	assert.InDelta(t, 0xae/255.0*0.2, ambient[2], 1e-6)
}

func TestMaterialsScene_SpinFollowsElapsedTime(t *testing.T) {
	s := newShowcase(t)

	require.NoError(t, s.app.RunFrames(1))
	assert.Zero(t, s.transform(t, "sphere").Rotation.Y())

	s.clock.Advance(10 * time.Second)
	require.NoError(t, s.app.RunFrames(1))

	assert.InDelta(t, 1.0, s.transform(t, "sphere").Rotation.Y(), 1e-5)
	assert.InDelta(t, 1.0, s.transform(t, "torus").Rotation.Y(), 1e-5)
	assert.Zero(t, s.transform(t, "plane").Rotation.Y())
	assert.Zero(t, s.transform(t, "sphereMatcap").Rotation.Y())

	s.clock.Advance(5 * time.Second)
	require.NoError(t, s.app.RunFrames(1))
	assert.InDelta(t, 1.5, s.transform(t, "sphere").Rotation.Y(), 1e-5)
}

func TestMaterialsScene_FrameContents(t *testing.T) {
	s := newShowcase(t)

	require.NoError(t, s.app.RunFrames(1))
	frame := s.renderer.LastFrame
	require.Len(t, frame.Items, 4)
	assert.Equal(t, 1, s.renderer.Rendered)
	assert.NotNil(t, frame.Overlay, "debug panel is visible by default")

	split := core.SplitTransparent(frame.Items)
	assert.Equal(t, 1, split)
	assert.Equal(t, core.MaterialMatcap, frame.Items[0].Kind)
	for _, item := range frame.Items[split:] {
		assert.True(t, item.Transparent)
	}

	s.server.Wait()
	require.NoError(t, s.app.RunFrames(1))
	for _, item := range s.renderer.LastFrame.Items {
		if item.Kind == core.MaterialStandard {
			assert.Equal(t, uint32(0xff), item.Uniform.Flags[0], "all seven maps and the env map are bound")
			assert.Equal(t, float32(1), item.Uniform.Color[3])
		} else {
			assert.Equal(t, uint32(1), item.Uniform.Flags[0])
		}
	}
}

func TestMaterialsScene_SlidersDriveMaterial(t *testing.T) {
	s := newShowcase(t)
	panel, ok := Resource[Panel](s.app)
	require.True(t, ok)
	standard, _ := s.server.StandardMaterial(s.scene.Standard)
	matcap, _ := s.server.MatcapMaterial(s.scene.Matcap)

	metal, ok := panel.Slider("metalness")
	require.True(t, ok)
	rough, ok := panel.Slider("roughness")
	require.True(t, ok)

	for _, v := range []float32{0, 0.3, 0.5, 0.45, 1} {
		metal.SetValue(v)
		rough.SetValue(v)
		assert.InDelta(t, v, standard.Metalness, 1e-6)
		assert.InDelta(t, v, standard.Roughness, 1e-6)
	}

	metal.SetValue(1.7)
	assert.Equal(t, float32(1), standard.Metalness)

	selector, ok := panel.Slider("matcap")
	require.True(t, ok)
	assert.Equal(t, float32(8), selector.Value())
	selector.SetValue(3)
	assert.Equal(t, s.scene.Matcaps[2], matcap.Matcap)
}

func TestMaterialsScene_Resize(t *testing.T) {
	s := newShowcase(t)

	s.app.HandleResize(1024, 768, 3)

	cam := s.camera(t)
	assert.InDelta(t, 1024.0/768.0, cam.Aspect, 1e-4)
	w, h := s.renderer.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
	assert.Equal(t, float32(2), s.renderer.PixelRatio())
	bw, bh := s.renderer.DrawingBufferSize()
	assert.Equal(t, 2048, bw)
	assert.Equal(t, 1536, bh)

	require.NoError(t, s.app.RunFrames(1))
	assert.Equal(t, 1024, s.renderer.LastFrame.Width)
}
