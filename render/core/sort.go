package core

import (
	"sort"
)

// SortForDraw orders opaque items front to back and appends transparent items back
// to front, so blending composites correctly over what is already in the target.
// Depth is filled in from the camera position.
func SortForDraw(items []DrawItem, eye [3]float32) {
	for i := range items {
		p := items[i].Position
		dx, dy, dz := p[0]-eye[0], p[1]-eye[1], p[2]-eye[2]
		items[i].Depth = dx*dx + dy*dy + dz*dz
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Transparent != b.Transparent {
			return !a.Transparent
		}
		if a.Transparent {
			return a.Depth > b.Depth
		}
		return a.Depth < b.Depth
	})
}

// SplitTransparent returns the index of the first transparent item of a sorted slice.
func SplitTransparent(items []DrawItem) int {
	return sort.Search(len(items), func(i int) bool { return items[i].Transparent })
}
