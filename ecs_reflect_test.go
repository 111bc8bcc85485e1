package gekko

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcsReflect_SliceMakeIsTypedAndEmpty(t *testing.T) {
	type transform struct{ X, Y float32 }

	slice := reflectSliceMake(reflect.TypeOf(transform{}))
	require.IsType(t, []transform{}, slice)
	assert.Equal(t, 0, reflectSliceLen(slice))
}

func TestEcsReflect_AppendGetSet(t *testing.T) {
	type name struct{ Value string }

	slice := reflectSliceMake(reflect.TypeOf(name{}))
	slice = reflectSliceAppend(slice, reflect.ValueOf(name{"sphere"}))
	slice = reflectSliceAppend(slice, reflect.ValueOf(name{"plane"}))
	require.Equal(t, 2, reflectSliceLen(slice))

	reflectSliceSet(slice, 0, reflect.ValueOf(name{"torus"}))

	assert.Equal(t, name{"torus"}, reflectSliceGet(slice, 0).Interface())
	assert.Equal(t, name{"plane"}, slice.([]name)[1])
}

func TestEcsReflect_SetWrongTypePanics(t *testing.T) {
	slice := []int{1, 2}
	assert.Panics(t, func() {
		reflectSliceSet(slice, 0, reflect.ValueOf("wrong"))
	})
}

func TestEcsReflect_GetOutOfRangePanics(t *testing.T) {
	assert.Panics(t, func() {
		_ = reflectSliceGet([]int{1}, 3)
	})
}
