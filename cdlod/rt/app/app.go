// Package app owns GPU device/context creation: the thin WGPU instance,
// adapter, device, queue, surface, and swapchain configuration bootstrap
// that window/input/GPU context setup is explicitly reduced to (§1: "thin
// wrappers only"). Nothing in cdlod/rt/core, cdlod/rt/mesh, or cdlod/rt/gpu
// imports this package; TerrainModule is the only caller, wiring it at
// Install time.
package app

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App holds the WGPU instance/adapter/device/queue/surface quintet, grounded
// on the ancestor's voxelrt/rt/app.App bootstrap shape, trimmed to exactly
// what a terrain renderer needs: no scene graph, editor, or text/particle
// pipelines.
type App struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration
}

// NewApp wraps an already-created GLFW window. Init must be called before
// any field other than Window is valid.
func NewApp(window *glfw.Window) *App {
	return &App{Window: window}
}

// Init performs the one-time WGPU bootstrap: instance, surface, adapter,
// device, queue, and the initial swapchain configuration sized to the
// window's current framebuffer. Grounded on voxelrt/rt/app.App.Init, with
// the shader/pipeline/scene setup that followed it there dropped, since
// pipeline and shader construction are explicitly out of scope (§1).
func (a *App) Init() error {
	a.Instance = wgpu.CreateInstance(nil)

	surface := a.Instance.CreateSurface(GetSurfaceDescriptor(a.Window))
	a.Surface = surface

	adapter, err := a.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("cdlod/rt/app: request adapter: %w", err)
	}
	a.Adapter = adapter

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("cdlod/rt/app: request device: %w", err)
	}
	a.Device = device
	a.Queue = a.Device.GetQueue()

	width, height := a.Window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return fmt.Errorf("cdlod/rt/app: surface reports no supported formats")
	}

	a.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, a.Device, a.Config)

	return nil
}

// Resize reconfigures the surface after a framebuffer size change.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.Config.Width = uint32(width)
	a.Config.Height = uint32(height)
	a.Surface.Configure(a.Adapter, a.Device, a.Config)
}

// GetSurfaceDescriptor adapts a GLFW window to the WGPU surface descriptor
// for the host platform, delegating to wgpuglfw exactly as the ancestor
// does.
func GetSurfaceDescriptor(w *glfw.Window) *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w)
}

// Release tears down the device and instance. Surface/adapter/queue have no
// independent lifetime beyond the device and instance that own them.
func (a *App) Release() {
	if a.Device != nil {
		a.Device.Release()
	}
	if a.Instance != nil {
		a.Instance.Release()
	}
}
