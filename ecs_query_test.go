package gekko

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	app := newApp()
	ecs := app.ecs
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	var ids []EntityId
	var as []Comp1
	var bs []Comp2
	MakeQuery2[Comp1, Comp2](app.Commands()).Map(func(eid EntityId, c1 *Comp1, c2 *Comp2) bool {
		ids = append(ids, eid)
		as = append(as, *c1)
		bs = append(bs, *c2)
		return true
	})

	assert.Equal(t, []EntityId{id2, id3}, ids)
	assert.Equal(t, []Comp1{{a: 2}, {a: 3}}, as)
	assert.Equal(t, []Comp2{{b: 1.37}, {b: 4.20}}, bs)
}

func TestQuery_MapMutatesInPlace(t *testing.T) {
	type counter struct{ n int }

	app := newApp()
	id := app.ecs.addEntity(counter{n: 1})
	cmd := app.Commands()

	MakeQuery1[counter](cmd).Map(func(_ EntityId, c *counter) bool {
		c.n = 10
		return true
	})

	c, ok := GetComponent[counter](cmd, id)
	assert.True(t, ok)
	assert.Equal(t, 10, c.n)
}

func TestQuery_MapStopsEarly(t *testing.T) {
	type marker struct{}

	app := newApp()
	for i := 0; i < 5; i++ {
		app.ecs.addEntity(marker{})
	}

	visited := 0
	MakeQuery1[marker](app.Commands()).Map(func(EntityId, *marker) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestQuery_Map3(t *testing.T) {
	type a struct{ v int }
	type b struct{ v int }
	type c struct{ v int }

	app := newApp()
	app.ecs.addEntity(a{1}, b{2})
	id := app.ecs.addEntity(a{1}, b{2}, c{3})

	var seen []EntityId
	MakeQuery3[a, b, c](app.Commands()).Map(func(eid EntityId, x *a, y *b, z *c) bool {
		seen = append(seen, eid)
		assert.Equal(t, 6, x.v+y.v+z.v)
		return true
	})
	assert.Equal(t, []EntityId{id}, seen)
}

func TestGetComponent_Missing(t *testing.T) {
	type a struct{}
	type b struct{}

	app := newApp()
	id := app.ecs.addEntity(a{})
	cmd := app.Commands()

	_, ok := GetComponent[b](cmd, id)
	assert.False(t, ok)
	_, ok = GetComponent[a](cmd, id+100)
	assert.False(t, ok)
}
