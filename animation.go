package gekko

// SpinComponent turns an entity about its Y axis. The angle is a function of the
// elapsed time, not an accumulation of frame deltas, so a slow frame never drifts it.
type SpinComponent struct {
	SpeedY float32
}

type SpinModule struct{}

func (SpinModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(spinSystem).
			InStage(Update),
	)
}

func spinSystem(cmd *Commands, t *Time) {
	elapsed := t.ElapsedSeconds()
	MakeQuery2[TransformComponent, SpinComponent](cmd).Map(func(_ EntityId, tr *TransformComponent, spin *SpinComponent) bool {
		tr.Rotation[1] = elapsed * spin.SpeedY
		return true
	})
}
