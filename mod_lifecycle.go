package gekko

// OnShutdown registers a cleanup step. Steps run in reverse registration order,
// so resources created later (renderer, watchers) are released before the window.
func (app *App) OnShutdown(fn func()) {
	app.shutdownHooks = append(app.shutdownHooks, fn)
}

// Shutdown stops the loop and runs the cleanup steps once.
func (app *App) Shutdown() {
	app.Stop()
	hooks := app.shutdownHooks
	app.shutdownHooks = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	if len(hooks) > 0 {
		app.Logger().Debugf("Ran %d shutdown hooks", len(hooks))
	}
}
