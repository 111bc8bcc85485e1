package gekko

// Commands is the handle systems use to mutate the world. Entity changes are
// buffered and applied when the current stage ends.
type Commands struct {
	app *App
}

func (cmd *Commands) App() *App {
	return cmd.app
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingComp{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingComp{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// Stop ends the frame loop after the current tick.
func (cmd *Commands) Stop() {
	cmd.app.Stop()
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]

	row := arch.entities[entityId]

	var res []any
	for _, compId := range arch.key {
		val := reflectSliceGet(arch.componentData[compId], int(row))
		res = append(res, val.Interface())
	}
	return res
}
