package gekko

import (
	"reflect"
	"sort"
)

// Queries visit every entity owning all of the requested component types.
// Iteration order follows entity ids so frame output is stable.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

type queryMatch struct {
	eid  EntityId
	arch *archetype
	row  row
}

// matchArchetypes collects (entity, archetype, row) triples for archetypes holding all ids.
func (ecs *Ecs) matchArchetypes(ids ...componentId) []queryMatch {
	var res []queryMatch
	for _, arch := range ecs.archetypes {
		matched := true
		for _, id := range ids {
			if _, ok := arch.componentData[id]; !ok {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		for eid, r := range arch.entities {
			res = append(res, queryMatch{eid: eid, arch: arch, row: r})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].eid < res[j].eid })
	return res
}

func identify[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeOf((*T)(nil)).Elem())
}

func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	idA := identify[A](q.ecs)
	for _, match := range q.ecs.matchArchetypes(idA) {
		a := &match.arch.componentData[idA].([]A)[match.row]
		if !m(match.eid, a) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	idA, idB := identify[A](q.ecs), identify[B](q.ecs)
	for _, match := range q.ecs.matchArchetypes(idA, idB) {
		a := &match.arch.componentData[idA].([]A)[match.row]
		b := &match.arch.componentData[idB].([]B)[match.row]
		if !m(match.eid, a, b) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	idA, idB, idC := identify[A](q.ecs), identify[B](q.ecs), identify[C](q.ecs)
	for _, match := range q.ecs.matchArchetypes(idA, idB, idC) {
		a := &match.arch.componentData[idA].([]A)[match.row]
		b := &match.arch.componentData[idB].([]B)[match.row]
		c := &match.arch.componentData[idC].([]C)[match.row]
		if !m(match.eid, a, b, c) {
			return
		}
	}
}

// GetComponent returns a pointer into the storage of component T of the given entity.
// The pointer is valid until the next command flush.
func GetComponent[T any](cmd *Commands, eid EntityId) (*T, bool) {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[eid]
	if !ok {
		return nil, false
	}
	arch := ecs.archetypes[archId]
	data, ok := arch.componentData[identify[T](ecs)]
	if !ok {
		return nil, false
	}
	return &data.([]T)[arch.entities[eid]], true
}
