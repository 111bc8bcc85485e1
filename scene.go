package gekko

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Meshes []MeshDef
	Lights []LightDef
	Camera CameraDef
}

// MeshDef places a geometry with a material. Material names a key of the material
// table handed to SpawnScene.
type MeshDef struct {
	Name     string
	Geometry func() *Geometry
	Material string
	Position mgl32.Vec3
	SpinY    float32
	// UV2 copies uv into uv2 so the ambient occlusion map has its second channel.
	UV2 bool
}

// LightDef defines a light instantiation. Target names a mesh of the same scene.
type LightDef struct {
	Name     string
	Light    LightComponent
	Position mgl32.Vec3
	Target   string
}

type CameraDef struct {
	Position      mgl32.Vec3
	Target        mgl32.Vec3
	Fov           float32
	Near          float32
	Far           float32
	EnableDamping bool
}

const (
	sunColor       = 0xebd0ae
	showcaseSpinY  = 0.1
	materialPBR    = "standard"
	materialMatcap = "matcap"
)

// MaterialsSceneDef is the material showcase: two spheres, a plane and a torus lit by
// a warm directional light aimed at the plane plus a dim ambient fill.
func MaterialsSceneDef() SceneDef {
	sphere := func() *Geometry { return SphereGeometry(0.5, 16, 16) }
	return SceneDef{
		Meshes: []MeshDef{
			{Name: "plane", Geometry: func() *Geometry { return PlaneGeometry(1, 1, 4, 1) }, Material: materialPBR, Position: mgl32.Vec3{1.5, 0, 0}, UV2: true},
			{Name: "sphere", Geometry: sphere, Material: materialPBR, Position: mgl32.Vec3{-1.5, 0, 0}, SpinY: showcaseSpinY},
			{Name: "torus", Geometry: func() *Geometry { return TorusGeometry(0.3, 0.2, 16, 32) }, Material: materialPBR, SpinY: showcaseSpinY},
			{Name: "sphereMatcap", Geometry: sphere, Material: materialMatcap, Position: mgl32.Vec3{-1.5, 1.5, 0}},
		},
		Lights: []LightDef{
			{Name: "sun", Light: DirectionalLight(sunColor, 0.5), Position: mgl32.Vec3{0, 4, 4}, Target: "plane"},
			{Name: "ambient", Light: AmbientLight(sunColor, 0.2)},
		},
		Camera: CameraDef{
			Position:      mgl32.Vec3{1, 1, 2},
			Fov:           75,
			Near:          0.1,
			Far:           100,
			EnableDamping: true,
		},
	}
}

// SpawnScene queues every entity of def and returns them by name. Meshes go first so
// light targets resolve to entities that already have an id.
func SpawnScene(cmd *Commands, server *AssetServer, def SceneDef, materials map[string]AssetId, aspect float32) (map[string]EntityId, error) {
	entities := make(map[string]EntityId, len(def.Meshes)+len(def.Lights)+1)

	for _, mesh := range def.Meshes {
		material, ok := materials[mesh.Material]
		if !ok {
			return nil, fmt.Errorf("mesh %q: unknown material %q", mesh.Name, mesh.Material)
		}
		geometry := mesh.Geometry()
		if mesh.UV2 {
			geometry.DuplicateUV()
		}
		components := []any{
			NameComponent{Name: mesh.Name},
			NewTransform(mesh.Position.X(), mesh.Position.Y(), mesh.Position.Z()),
			MeshComponent{Geometry: server.AddGeometry(geometry)},
			MaterialComponent{Material: material},
		}
		if mesh.SpinY != 0 {
			components = append(components, SpinComponent{SpeedY: mesh.SpinY})
		}
		entities[mesh.Name] = cmd.AddEntity(components...)
	}

	for _, light := range def.Lights {
		l := light.Light
		if light.Target != "" {
			target, ok := entities[light.Target]
			if !ok {
				return nil, fmt.Errorf("light %q: unknown target %q", light.Name, light.Target)
			}
			l = l.WithTarget(target)
		}
		entities[light.Name] = cmd.AddEntity(
			NameComponent{Name: light.Name},
			NewTransform(light.Position.X(), light.Position.Y(), light.Position.Z()),
			l,
		)
	}

	cam := NewPerspectiveCamera(def.Camera.Fov, aspect, def.Camera.Near, def.Camera.Far)
	cam.Position = def.Camera.Position
	cam.LookAt = def.Camera.Target
	controls := NewOrbitControls(def.Camera.Target)
	controls.EnableDamping = def.Camera.EnableDamping
	entities["camera"] = cmd.AddEntity(NameComponent{Name: "camera"}, cam, controls)

	return entities, nil
}

// MaterialsScene keeps the handles of the showcase so tools and tests can reach them.
type MaterialsScene struct {
	Door     StandardMaps
	Matcaps  []TextureHandle
	Standard AssetId
	Matcap   AssetId
	Entities map[string]EntityId
}

// Entity looks up a spawned entity by name.
func (s *MaterialsScene) Entity(name string) (EntityId, bool) {
	eid, ok := s.Entities[name]
	return eid, ok
}

var envMapFaces = []string{
	"textures/environmentMaps/0/px.jpg",
	"textures/environmentMaps/0/nx.jpg",
	"textures/environmentMaps/0/py.jpg",
	"textures/environmentMaps/0/ny.jpg",
	"textures/environmentMaps/0/pz.jpg",
	"textures/environmentMaps/0/nz.jpg",
}

const (
	matcapCount   = 8
	defaultMatcap = 8
)

type MaterialsSceneModule struct{}

func (mod MaterialsSceneModule) Install(app *App, cmd *Commands) {
	server, ok := Resource[AssetServer](app)
	if !ok {
		panic("MaterialsSceneModule requires AssetServerModule")
	}
	aspect := float32(1)
	if vp, ok := Resource[Viewport](app); ok {
		aspect = vp.Aspect()
	}

	scene, err := loadMaterialsScene(server)
	if err != nil {
		panic(err)
	}
	standard, _ := server.StandardMaterial(scene.Standard)
	matcap, _ := server.MatcapMaterial(scene.Matcap)

	entities, err := SpawnScene(cmd, server, MaterialsSceneDef(), map[string]AssetId{
		materialPBR:    scene.Standard,
		materialMatcap: scene.Matcap,
	}, aspect)
	if err != nil {
		panic(err)
	}
	scene.Entities = entities
	app.addResources(scene)

	if panel, ok := Resource[Panel](app); ok {
		panel.AddFloat("metalness", FieldBinding(&standard.Metalness)).Min(0).Max(1).Step(0.0001)
		panel.AddFloat("roughness", FieldBinding(&standard.Roughness)).Min(0).Max(1).Step(0.0001)
		panel.AddFloat("matcap", FloatBinding{
			Get: func() float32 {
				for i, h := range scene.Matcaps {
					if h == matcap.Matcap {
						return float32(i + 1)
					}
				}
				return 0
			},
			Set: func(v float32) {
				idx := int(v) - 1
				if idx >= 0 && idx < len(scene.Matcaps) {
					matcap.Matcap = scene.Matcaps[idx]
				}
			},
		}).Min(1).Max(matcapCount).Step(1)
	}

	SpinModule{}.Install(app, cmd)
	app.Logger().Infof("Materials scene spawned with %d entities", len(entities))
}

// loadMaterialsScene queues every texture and registers both materials. Textures
// decode in the background; the materials are usable right away.
func loadMaterialsScene(server *AssetServer) (*MaterialsScene, error) {
	scene := &MaterialsScene{}
	scene.Door = StandardMaps{
		Map:          server.LoadTexture("textures/door/color.jpg"),
		AlphaMap:     server.LoadTexture("textures/door/alpha.jpg", Linear()),
		AoMap:        server.LoadTexture("textures/door/ambientOcclusion.jpg", Linear()),
		BumpMap:      server.LoadTexture("textures/door/height.jpg", Linear()),
		MetalnessMap: server.LoadTexture("textures/door/metalness.jpg", Linear()),
		NormalMap:    server.LoadTexture("textures/door/normal.jpg", Linear()),
		RoughnessMap: server.LoadTexture("textures/door/roughness.jpg", Linear()),
	}
	env, err := server.LoadCubeTexture(envMapFaces)
	if err != nil {
		return nil, fmt.Errorf("environment map: %w", err)
	}
	scene.Door.EnvMap = env

	for i := 1; i <= matcapCount; i++ {
		scene.Matcaps = append(scene.Matcaps, server.LoadTexture(fmt.Sprintf("textures/matcaps/%d.png", i)))
	}

	standard := NewStandardMaterial()
	standard.Maps = scene.Door
	standard.Transparent = true
	if scene.Standard, err = server.AddMaterial(standard); err != nil {
		return nil, fmt.Errorf("standard material: %w", err)
	}

	matcap := NewMatcapMaterial(scene.Matcaps[defaultMatcap-1])
	if scene.Matcap, err = server.AddMaterial(matcap); err != nil {
		return nil, fmt.Errorf("matcap material: %w", err)
	}
	return scene, nil
}
