package app

import (
	"github.com/gekko3d/gekko-pbr/render/core"
	"github.com/gekko3d/gekko-pbr/render/shaders"

	"github.com/cogentcore/webgpu/wgpu"
)

var meshVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: core.VertexStride * 4,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 32, ShaderLocation: 3},
	},
}

var alphaBlend = &wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

type pipelineOptions struct {
	label      string
	module     *wgpu.ShaderModule
	mesh       bool
	blend      *wgpu.BlendState
	depthWrite bool
	depthTest  bool
}

func (r *Renderer) createPipeline(o pipelineOptions) (*wgpu.RenderPipeline, error) {
	vertex := wgpu.VertexState{
		Module:     o.module,
		EntryPoint: "vs_main",
	}
	primitive := wgpu.PrimitiveState{
		Topology: wgpu.PrimitiveTopologyTriangleList,
	}
	if o.mesh {
		vertex.Buffers = []wgpu.VertexBufferLayout{meshVertexLayout}
		primitive.FrontFace = wgpu.FrontFaceCCW
		primitive.CullMode = wgpu.CullModeBack
	}
	compare := wgpu.CompareFunctionLess
	if !o.depthTest {
		compare = wgpu.CompareFunctionAlways
	}

	return r.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  o.label,
		Vertex: vertex,
		Fragment: &wgpu.FragmentState{
			Module:     o.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    r.Config.Format,
				Blend:     o.blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: primitive,
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: o.depthWrite,
			DepthCompare:      compare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
}

func (r *Renderer) createPipelines() error {
	standard, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Standard VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.StandardWGSL},
	})
	if err != nil {
		return err
	}
	defer standard.Release()

	matcap, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Matcap VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.MatcapWGSL},
	})
	if err != nil {
		return err
	}
	defer matcap.Release()

	overlay, err := r.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Overlay VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.OverlayWGSL},
	})
	if err != nil {
		return err
	}
	defer overlay.Release()

	r.OpaquePipeline, err = r.createPipeline(pipelineOptions{
		label: "Standard Opaque", module: standard, mesh: true, depthWrite: true, depthTest: true,
	})
	if err != nil {
		return err
	}
	// Transparent surfaces test against depth but never write it, so they cannot hide each other.
	r.TransparentPipeline, err = r.createPipeline(pipelineOptions{
		label: "Standard Transparent", module: standard, mesh: true, blend: alphaBlend, depthTest: true,
	})
	if err != nil {
		return err
	}
	r.MatcapPipeline, err = r.createPipeline(pipelineOptions{
		label: "Matcap", module: matcap, mesh: true, depthWrite: true, depthTest: true,
	})
	if err != nil {
		return err
	}
	r.OverlayPipeline, err = r.createPipeline(pipelineOptions{
		label: "Overlay", module: overlay, blend: alphaBlend,
	})
	return err
}
