package gekko

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/gekko3d/gekko-pbr/render/core"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FloatBinding connects a slider to the property it edits.
type FloatBinding struct {
	Get func() float32
	Set func(float32)
}

// FieldBinding binds directly to a float32 field.
func FieldBinding(p *float32) FloatBinding {
	return FloatBinding{
		Get: func() float32 { return *p },
		Set: func(v float32) { *p = v },
	}
}

type Slider struct {
	Label   string
	binding FloatBinding
	min     float64
	max     float64
	step    float64
}

func (s *Slider) Min(v float32) *Slider {
	s.min = float64(v)
	return s
}

func (s *Slider) Max(v float32) *Slider {
	s.max = float64(v)
	return s
}

func (s *Slider) Step(v float32) *Slider {
	s.step = float64(v)
	return s
}

func (s *Slider) Value() float32 {
	return s.binding.Get()
}

// SetValue clamps v into [min, max], snaps it to the step grid and writes it
// unchanged otherwise to the bound property.
func (s *Slider) SetValue(v float32) {
	s.binding.Set(s.constrain(float64(v)))
}

func (s *Slider) constrain(v float64) float32 {
	v = math.Max(s.min, math.Min(s.max, v))
	if s.step > 0 {
		v = math.Round(v/s.step) * s.step
		// drop the binary noise of the step multiplication
		v, _ = strconv.ParseFloat(strconv.FormatFloat(v, 'f', s.decimals(), 64), 64)
		v = math.Max(s.min, math.Min(s.max, v))
	}
	return float32(v)
}

func (s *Slider) decimals() int {
	if s.step <= 0 {
		return 3
	}
	d := 0
	for step := s.step; step < 1-1e-6 && d < 8; step *= 10 {
		d++
	}
	return d
}

// fraction is the slider position in [0,1] for drawing.
func (s *Slider) fraction() float64 {
	if s.max <= s.min || math.IsInf(s.max-s.min, 0) {
		return 0
	}
	return (float64(s.Value()) - s.min) / (s.max - s.min)
}

const (
	panelWidth     = 245
	panelMargin    = 15
	panelRowHeight = 27
	panelFooter    = 20
	panelLabelW    = 98
	panelValueW    = 52
	panelTrackPad  = 6
)

var (
	panelBackground = color.RGBA{26, 26, 26, 235}
	panelRowLine    = color.RGBA{44, 44, 44, 255}
	panelTrack      = color.RGBA{48, 48, 48, 255}
	panelFill       = color.RGBA{47, 161, 214, 255}
	panelText       = color.RGBA{238, 238, 238, 255}
	panelHint       = color.RGBA{140, 140, 140, 255}
)

// Panel is a minimal on-screen slider list drawn in the top right corner.
type Panel struct {
	Visible bool

	sliders   []*Slider
	dragging  int
	capturing bool

	image    *image.RGBA
	drawn    []float32
	drawnVis bool
	version  uint64
}

func NewPanel() *Panel {
	return &Panel{Visible: true, dragging: -1}
}

// AddFloat appends a slider. The range is unbounded until Min and Max are set.
func (p *Panel) AddFloat(label string, binding FloatBinding) *Slider {
	s := &Slider{
		Label:   label,
		binding: binding,
		min:     math.Inf(-1),
		max:     math.Inf(1),
	}
	p.sliders = append(p.sliders, s)
	return s
}

func (p *Panel) Sliders() []*Slider {
	return p.sliders
}

func (p *Panel) Slider(label string) (*Slider, bool) {
	for _, s := range p.sliders {
		if s.Label == label {
			return s, true
		}
	}
	return nil, false
}

func (p *Panel) Toggle() {
	p.Visible = !p.Visible
}

// Capturing reports whether the pointer is currently interacting with the panel,
// in which case camera controls must ignore it.
func (p *Panel) Capturing() bool {
	return p.capturing
}

func (p *Panel) height() int {
	return len(p.sliders)*panelRowHeight + panelFooter
}

func panelOriginX(viewWidth int) int {
	return viewWidth - panelWidth - panelMargin
}

// panelOffsetX is where the panel is drawn; narrow windows pin it to the left edge.
func panelOffsetX(viewWidth int) int {
	return max(panelOriginX(viewWidth), 0)
}

func trackBounds() (int, int) {
	return panelLabelW, panelWidth - panelValueW - panelTrackPad
}

// pointerInput updates drag state from panel-local coordinates.
func (p *Panel) pointerInput(x, y float64, justPressed, pressed bool) {
	inside := x >= 0 && x < panelWidth && y >= 0 && y < float64(p.height())
	if justPressed && inside {
		p.capturing = true
		row := int(y) / panelRowHeight
		x0, x1 := trackBounds()
		if row < len(p.sliders) && x >= float64(x0) && x <= float64(x1) {
			p.dragging = row
		}
	}
	if !pressed {
		p.capturing = false
		p.dragging = -1
		return
	}
	if p.dragging >= 0 {
		s := p.sliders[p.dragging]
		x0, x1 := trackBounds()
		t := math.Max(0, math.Min(1, (x-float64(x0))/float64(x1-x0)))
		if !math.IsInf(s.min, 0) && !math.IsInf(s.max, 0) {
			s.SetValue(float32(s.min + t*(s.max-s.min)))
		}
	}
}

func (p *Panel) changed() bool {
	if p.image == nil || p.drawnVis != p.Visible || len(p.drawn) != len(p.sliders) {
		return true
	}
	for i, s := range p.sliders {
		if s.Value() != p.drawn[i] {
			return true
		}
	}
	return false
}

// Overlay returns the panel image for a viewport of the given width, re-rasterizing
// only when a value or the visibility changed. Hidden panels return nil.
func (p *Panel) Overlay(viewWidth int) *core.Overlay {
	if p.changed() {
		p.rasterize()
	}
	if !p.Visible {
		return nil
	}
	return &core.Overlay{
		Image:   p.image,
		X:       panelOffsetX(viewWidth),
		Y:       0,
		Version: p.version,
		Visible: true,
	}
}

func (p *Panel) rasterize() {
	p.version++
	p.drawnVis = p.Visible
	p.drawn = p.drawn[:0]
	for _, s := range p.sliders {
		p.drawn = append(p.drawn, s.Value())
	}

	img := image.NewRGBA(image.Rect(0, 0, panelWidth, p.height()))
	draw.Draw(img, img.Bounds(), image.NewUniform(panelBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	x0, x1 := trackBounds()
	for i, s := range p.sliders {
		top := i * panelRowHeight
		draw.Draw(img, image.Rect(0, top+panelRowHeight-1, panelWidth, top+panelRowHeight), image.NewUniform(panelRowLine), image.Point{}, draw.Src)

		d.Src = image.NewUniform(panelText)
		d.Dot = fixed.P(6, top+18)
		d.DrawString(s.Label)

		track := image.Rect(x0, top+6, x1, top+panelRowHeight-6)
		draw.Draw(img, track, image.NewUniform(panelTrack), image.Point{}, draw.Src)
		fill := track
		fill.Max.X = track.Min.X + int(float64(track.Dx())*s.fraction())
		draw.Draw(img, fill, image.NewUniform(panelFill), image.Point{}, draw.Src)

		d.Dot = fixed.P(x1+panelTrackPad, top+18)
		d.DrawString(strconv.FormatFloat(float64(s.Value()), 'f', s.decimals(), 32))
	}

	d.Src = image.NewUniform(panelHint)
	d.Dot = fixed.P(6, len(p.sliders)*panelRowHeight+14)
	d.DrawString(fmt.Sprintf("%d controls, H to hide", len(p.sliders)))

	p.image = img
}

type DebugPanelModule struct {
	Hidden bool
}

func (mod DebugPanelModule) Install(app *App, cmd *Commands) {
	panel := NewPanel()
	panel.Visible = !mod.Hidden
	app.addResources(panel)
	app.UseSystem(
		System(panelInputSystem).
			InStage(PreUpdate),
	)
}

func panelInputSystem(input *Input, panel *Panel, vp *Viewport) {
	if input.JustPressed[KeyH] {
		panel.Toggle()
	}
	if !panel.Visible {
		panel.capturing = false
		panel.dragging = -1
		return
	}
	x := input.MouseX - float64(panelOffsetX(vp.Width))
	panel.pointerInput(x, input.MouseY, input.JustPressed[MouseButtonLeft], input.Pressed[MouseButtonLeft])
}
