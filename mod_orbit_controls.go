package gekko

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const orbitEps = 0.000001

// OrbitControls orbits its camera around Target. Input only queues motion; nothing
// moves until Update runs. With damping each Update applies DampingFactor of the
// queued motion and keeps the remainder, so the camera glides to a stop.
type OrbitControls struct {
	Enabled       bool
	Target        mgl32.Vec3
	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	PanSpeed      float32
	KeyPanSpeed   float32
	MinDistance   float32
	MaxDistance   float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3

	rotating bool
	panning  bool
}

func NewOrbitControls(target mgl32.Vec3) OrbitControls {
	return OrbitControls{
		Enabled:       true,
		Target:        target,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		KeyPanSpeed:   7,
		MinDistance:   0,
		MaxDistance:   math32.Inf(1),
		scale:         1,
	}
}

// Rotate queues an orbit by a pointer movement of (dx, dy) on a view viewHeight tall.
func (c *OrbitControls) Rotate(dx, dy, viewHeight float32) {
	if viewHeight <= 0 {
		return
	}
	c.deltaTheta -= 2 * math32.Pi * dx / viewHeight * c.RotateSpeed
	c.deltaPhi -= 2 * math32.Pi * dy / viewHeight * c.RotateSpeed
}

// Dolly queues a zoom; positive steps move towards the target.
func (c *OrbitControls) Dolly(steps float32) {
	if steps == 0 {
		return
	}
	zoom := math32.Pow(0.95, c.ZoomSpeed*math32.Abs(steps))
	if c.scale == 0 {
		c.scale = 1
	}
	if steps > 0 {
		c.scale *= zoom
	} else {
		c.scale /= zoom
	}
}

// Pan queues a screen-space pan of (dx, dy) pixels.
func (c *OrbitControls) Pan(dx, dy, viewHeight float32, cam *CameraComponent) {
	if viewHeight <= 0 {
		return
	}
	offset := cam.Position.Sub(c.Target)
	targetDistance := offset.Len() * math32.Tan(mgl32.DegToRad(cam.Fov)/2)

	view := cam.ViewMatrix().Inv()
	right := view.Col(0).Vec3()
	up := view.Col(1).Vec3()

	left := 2 * dx * targetDistance / viewHeight * c.PanSpeed
	upward := 2 * dy * targetDistance / viewHeight * c.PanSpeed
	c.panOffset = c.panOffset.Add(right.Mul(-left)).Add(up.Mul(upward))
}

// Update moves the camera by the queued motion. Returns true if the camera moved.
func (c *OrbitControls) Update(cam *CameraComponent) bool {
	if c.scale == 0 {
		c.scale = 1
	}
	offset := cam.Position.Sub(c.Target)

	radius := offset.Len()
	theta := math32.Atan2(offset.X(), offset.Z())
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clampf(offset.Y()/radius, -1, 1))
	}

	factor := float32(1)
	if c.EnableDamping {
		factor = c.DampingFactor
	}
	theta += c.deltaTheta * factor
	phi += c.deltaPhi * factor
	phi = clampf(phi, orbitEps, math32.Pi-orbitEps)

	radius = clampf(radius*c.scale, c.MinDistance, c.MaxDistance)
	c.Target = c.Target.Add(c.panOffset.Mul(factor))

	sinPhi := math32.Sin(phi)
	offset = mgl32.Vec3{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	}

	previous := cam.Position
	cam.Position = c.Target.Add(offset)
	cam.LookAt = c.Target

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
		c.panOffset = mgl32.Vec3{}
	}
	c.scale = 1

	return previous.Sub(cam.Position).LenSqr() > orbitEps
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// OrbitControlsModule drives every OrbitControls entity. The zero value keeps the
// damping each entity was spawned with; DisableDamping and a positive DampingFactor
// override it.
type OrbitControlsModule struct {
	DisableDamping bool
	DampingFactor  float32
}

func (mod OrbitControlsModule) Install(app *App, cmd *Commands) {
	app.addResources(&orbitSettings{disableDamping: mod.DisableDamping, factor: mod.DampingFactor})
	app.UseSystem(
		System(orbitInputSystem).
			InStage(Update),
	)
	app.UseSystem(
		System(orbitUpdateSystem).
			InStage(PostUpdate),
	)
}

type orbitSettings struct {
	disableDamping bool
	factor         float32
}

func orbitInputSystem(cmd *Commands, input *Input, vp *Viewport) {
	panel, _ := Resource[Panel](cmd.app)
	panelBusy := panel != nil && panel.Capturing()
	height := float32(vp.Height)

	MakeQuery2[CameraComponent, OrbitControls](cmd).Map(func(_ EntityId, cam *CameraComponent, c *OrbitControls) bool {
		if !c.Enabled {
			return true
		}
		if input.JustPressed[MouseButtonLeft] {
			c.rotating = !panelBusy
		}
		if input.JustPressed[MouseButtonRight] {
			c.panning = !panelBusy
		}
		if !input.Pressed[MouseButtonLeft] {
			c.rotating = false
		}
		if !input.Pressed[MouseButtonRight] {
			c.panning = false
		}

		dx, dy := float32(input.MouseDeltaX), float32(input.MouseDeltaY)
		if c.rotating {
			c.Rotate(dx, dy, height)
		}
		if c.panning {
			c.Pan(dx, dy, height, cam)
		}
		if input.ScrollY != 0 && !panelBusy {
			c.Dolly(float32(input.ScrollY))
		}

		var kx, ky float32
		if input.Pressed[KeyLeft] {
			kx += c.KeyPanSpeed
		}
		if input.Pressed[KeyRight] {
			kx -= c.KeyPanSpeed
		}
		if input.Pressed[KeyUp] {
			ky += c.KeyPanSpeed
		}
		if input.Pressed[KeyDown] {
			ky -= c.KeyPanSpeed
		}
		if kx != 0 || ky != 0 {
			c.Pan(kx, ky, height, cam)
		}
		return true
	})
}

func orbitUpdateSystem(cmd *Commands, settings *orbitSettings) {
	MakeQuery2[CameraComponent, OrbitControls](cmd).Map(func(_ EntityId, cam *CameraComponent, c *OrbitControls) bool {
		if settings.disableDamping {
			c.EnableDamping = false
		}
		if settings.factor > 0 {
			c.DampingFactor = settings.factor
		}
		c.Update(cam)
		return true
	})
}
