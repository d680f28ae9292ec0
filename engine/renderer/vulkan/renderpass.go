package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/driver"
)

type VulkanRenderpass struct {
	Handle vk.RenderPass
	Format driver.Format
	// Clear is true for a pass that clears its attachment on load. A pass
	// that loads instead draws on top of what an earlier pass left.
	Clear bool
}

// CreateRenderPass builds a single-subpass colour-only pass whose
// attachment ends in the present layout. Passes created with the same
// format are compatible and share framebuffers.
func (vb *VulkanBackend) CreateRenderPass(format driver.Format, clear bool) (driver.RenderPass, error) {
	loadOp := vk.AttachmentLoadOpLoad
	initialLayout := vk.ImageLayoutPresentSrc
	if clear {
		loadOp = vk.AttachmentLoadOpClear
		// Do not expect any particular layout before render pass starts.
		initialLayout = vk.ImageLayoutUndefined
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         loadOp,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  initialLayout,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(vb.context.Device.LogicalDevice, &createInfo, vb.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateRenderPass", res)
	}
	core.LogDebug("render pass created (format %s, clear %t)", format, clear)
	return &VulkanRenderpass{Handle: handle, Format: format, Clear: clear}, nil
}

func (vb *VulkanBackend) DestroyRenderPass(r driver.RenderPass) {
	rp, ok := r.(*VulkanRenderpass)
	if ok && rp != nil && rp.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(vb.context.Device.LogicalDevice, rp.Handle, vb.context.Allocator)
		rp.Handle = vk.NullRenderPass
	}
}

func (vb *VulkanBackend) CmdBeginRenderPass(cb driver.CommandBuffer, begin driver.RenderPassBegin) {
	handle, ok := cb.(vk.CommandBuffer)
	rp, okRP := begin.RenderPass.(*VulkanRenderpass)
	fb, okFB := begin.Framebuffer.(vk.Framebuffer)
	if !ok || !okRP || !okFB {
		core.LogError("CmdBeginRenderPass: foreign handle")
		return
	}

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  rp.Handle,
		Framebuffer: fb,
		RenderArea:  rect2D(begin.Area),
	}
	if rp.Clear {
		clearValues := make([]vk.ClearValue, 1)
		clearValues[0].SetColor([]float32{begin.ClearColor.R, begin.ClearColor.G, begin.ClearColor.B, begin.ClearColor.A})
		beginInfo.ClearValueCount = 1
		beginInfo.PClearValues = clearValues
	}
	vk.CmdBeginRenderPass(handle, &beginInfo, vk.SubpassContentsInline)
}

func (vb *VulkanBackend) CmdEndRenderPass(cb driver.CommandBuffer) {
	if handle, ok := cb.(vk.CommandBuffer); ok {
		vk.CmdEndRenderPass(handle)
	}
}

func (vb *VulkanBackend) CmdSetViewport(cb driver.CommandBuffer, vp driver.Viewport) {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok {
		return
	}
	vk.CmdSetViewport(handle, 0, 1, []vk.Viewport{{
		X:        vp.X,
		Y:        vp.Y,
		Width:    vp.Width,
		Height:   vp.Height,
		MinDepth: vp.MinDepth,
		MaxDepth: vp.MaxDepth,
	}})
}

func (vb *VulkanBackend) CmdSetScissor(cb driver.CommandBuffer, rect driver.Rect2D) {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok {
		return
	}
	vk.CmdSetScissor(handle, 0, 1, []vk.Rect2D{rect2D(rect)})
}

// CmdClearRects fills each rect with its colour via vkCmdClearAttachments,
// one call per distinct rect since the clear value is per attachment.
func (vb *VulkanBackend) CmdClearRects(cb driver.CommandBuffer, rects []driver.ClearRect) {
	handle, ok := cb.(vk.CommandBuffer)
	if !ok || len(rects) == 0 {
		return
	}
	for _, r := range rects {
		if r.Rect.Extent.IsZero() {
			continue
		}
		attachment := vk.ClearAttachment{
			AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
			ColorAttachment: 0,
		}
		attachment.ClearValue.SetColor([]float32{r.Color.R, r.Color.G, r.Color.B, r.Color.A})
		vk.CmdClearAttachments(handle, 1, []vk.ClearAttachment{attachment}, 1, []vk.ClearRect{{
			Rect:           rect2D(r.Rect),
			BaseArrayLayer: 0,
			LayerCount:     1,
		}})
	}
}

func rect2D(r driver.Rect2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.X, Y: r.Y},
		Extent: vk.Extent2D{Width: r.Extent.Width, Height: r.Extent.Height},
	}
}
