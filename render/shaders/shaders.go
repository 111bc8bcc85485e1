package shaders

import (
	_ "embed"
)

//go:embed standard.wgsl
var StandardWGSL string

//go:embed matcap.wgsl
var MatcapWGSL string

//go:embed overlay.wgsl
var OverlayWGSL string
