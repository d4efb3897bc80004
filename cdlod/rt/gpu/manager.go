// Package gpu owns every WGPU resource the CDLOD renderer touches: the
// shared grid patch mesh's vertex/index buffers, one heightmap texture per
// resident tile, and the frame/tile/level/node uniform buffers the core
// package's selection and emission output feeds. cdlod/rt/core and
// cdlod/rt/mesh never import this package or wgpu directly, per the "core
// must not import window or input concepts" rule in the design this repo
// is built from (see DESIGN.md) — Manager is the one place that translates
// their plain-Go outputs into device resources.
package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/core"
	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/mesh"
)

// SafeBufferSizeLimit matches the ancestor's manager.GpuBufferManager: a
// soft ceiling past which ensureBuffer still allocates, but warns, since a
// buffer this size usually signals a runaway growth loop rather than a
// legitimate terrain size.
const SafeBufferSizeLimit = 1024 * 1024 * 1024

// SamplerPreset is a small tagged variant over the sampler configurations
// the heightmap texture needs, replacing the ancestor's function-pointer
// style sampler setup (design-notes §9) with a single switch in
// createSampler.
type SamplerPreset int

const (
	SamplerLinearClamp SamplerPreset = iota
	SamplerNearestClamp
)

// tileTexture is the GPU-side mirror of one core.Heightmap: an R16Uint
// texture sampled in the vertex stage to displace the grid patch mesh, plus
// its default view. The shared sampler lives on Manager.HeightmapSampler;
// core.Heightmap.Texture only carries the opaque core.TextureHandle, which
// the heightmap loader never populates itself.
type tileTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// Manager owns every WGPU resource for the terrain renderer. There is
// exactly one per Terrain instance; TerrainModule creates it at Install time.
// Release frees its resources; TerrainModule does not call it.
type Manager struct {
	Device *wgpu.Device
	Queue  *wgpu.Queue

	GridVertexBuf  *wgpu.Buffer
	GridIndexBuf   *wgpu.Buffer
	GridIndexCount uint32

	HeightmapSampler *wgpu.Sampler

	tileTextures map[int]*tileTexture
	nextHandle   core.TextureHandle

	FrameUniformBuf *wgpu.Buffer
	TileUniformBuf  *wgpu.Buffer
	LevelUniformBuf *wgpu.Buffer
	NodeUniformBuf  *wgpu.Buffer
}

// NewManager wraps a device/queue pair. The device and queue are created by
// cdlod/rt/app.App.Init and passed down rather than constructed here. Every
// Ensure*/Write* method creates or writes device resources, so none of them
// can run against a nil device.
func NewManager(device *wgpu.Device, queue *wgpu.Queue) *Manager {
	return &Manager{
		Device:       device,
		Queue:        queue,
		tileTextures: make(map[int]*tileTexture),
	}
}

// EnsureSampler lazily creates the single sampler every heightmap texture
// shares. Grounded on the ancestor's setupTexture-style lazy-create pattern
// in voxelrt/rt/gpu/manager.go, generalized from textures to samplers.
func (m *Manager) EnsureSampler(preset SamplerPreset) *wgpu.Sampler {
	if m.HeightmapSampler != nil {
		return m.HeightmapSampler
	}
	m.HeightmapSampler = m.createSampler(preset)
	return m.HeightmapSampler
}

func (m *Manager) createSampler(preset SamplerPreset) *wgpu.Sampler {
	desc := &wgpu.SamplerDescriptor{
		Label:         "Heightmap Sampler",
		MaxAnisotropy: 1,
	}
	switch preset {
	case SamplerNearestClamp:
		desc.AddressModeU = wgpu.AddressModeClampToEdge
		desc.AddressModeV = wgpu.AddressModeClampToEdge
		desc.AddressModeW = wgpu.AddressModeClampToEdge
		desc.MagFilter = wgpu.FilterModeNearest
		desc.MinFilter = wgpu.FilterModeNearest
	default: // SamplerLinearClamp
		desc.AddressModeU = wgpu.AddressModeClampToEdge
		desc.AddressModeV = wgpu.AddressModeClampToEdge
		desc.AddressModeW = wgpu.AddressModeClampToEdge
		desc.MagFilter = wgpu.FilterModeLinear
		desc.MinFilter = wgpu.FilterModeLinear
	}

	s, err := m.Device.CreateSampler(desc)
	if err != nil {
		panic(err)
	}
	return s
}

// EnsureGridMesh uploads the single shared grid patch mesh's vertex/index
// data. Every tile, at every LOD level, reuses this one bound mesh (§4.9).
// TerrainModule calls it once at startup; each call rewrites both buffers
// (growing them if needed) whatever the mesh's Dimension.
func (m *Manager) EnsureGridMesh(gm *mesh.GridPatchMesh) {
	vertexData := make([]byte, len(gm.Vertices)*12)
	for i, v := range gm.Vertices {
		o := i * 12
		binary.LittleEndian.PutUint32(vertexData[o:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(vertexData[o+4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(vertexData[o+8:], math.Float32bits(v.Z))
	}
	m.ensureBuffer("Grid Vertex Buffer", &m.GridVertexBuf, vertexData, wgpu.BufferUsageVertex, 0)

	indexData := make([]byte, len(gm.Indices)*4)
	for i, idx := range gm.Indices {
		binary.LittleEndian.PutUint32(indexData[i*4:], idx)
	}
	m.ensureBuffer("Grid Index Buffer", &m.GridIndexBuf, indexData, wgpu.BufferUsageIndex, 0)

	m.GridIndexCount = uint32(len(gm.Indices))
}

// EnsureHeightmapTexture uploads hm's raster as an R16Uint texture and
// stamps the resulting opaque handle onto hm.Texture. Called
// once per tile at load time (§5: "GPU resources ... acquired at startup").
func (m *Manager) EnsureHeightmapTexture(tileIndex int, hm *core.Heightmap) {
	if existing, ok := m.tileTextures[tileIndex]; ok {
		existing.texture.Release()
	}

	tex, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("Heightmap Tile %d", tileIndex),
		Size:          wgpu.Extent3D{Width: uint32(hm.Extent), Height: uint32(hm.Extent), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR16Uint,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	raw := make([]byte, len(hm.Heights)*2)
	for i, h := range hm.Heights {
		binary.LittleEndian.PutUint16(raw[i*2:], h)
	}
	m.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		raw,
		&wgpu.TextureDataLayout{BytesPerRow: uint32(hm.Extent * 2), RowsPerImage: uint32(hm.Extent)},
		&wgpu.Extent3D{Width: uint32(hm.Extent), Height: uint32(hm.Extent), DepthOrArrayLayers: 1},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}

	m.tileTextures[tileIndex] = &tileTexture{texture: tex, view: view}

	m.nextHandle++
	hm.Texture = m.nextHandle
}

// TileTextureView returns the bound texture view for tileIndex, or nil if
// EnsureHeightmapTexture was never called for it.
func (m *Manager) TileTextureView(tileIndex int) *wgpu.TextureView {
	if tt, ok := m.tileTextures[tileIndex]; ok {
		return tt.view
	}
	return nil
}

// WriteFrameUniforms pushes the once-per-frame uniforms (§6): view-projection,
// camera position, and light position/intensity. lightPosW.w() == 0 means a
// directional light (xyz is its direction); w() == 1 means a positional one.
func (m *Manager) WriteFrameUniforms(viewProj mgl32.Mat4, cameraPos mgl32.Vec3, lightPosW mgl32.Vec4, lightIntensity float32) {
	buf := make([]byte, 112)
	writeMat4(buf, 0, viewProj)
	writeVec4(buf, 64, mgl32.Vec4{cameraPos.X(), cameraPos.Y(), cameraPos.Z(), 0})
	writeVec4(buf, 80, lightPosW)
	binary.LittleEndian.PutUint32(buf[96:], math.Float32bits(lightIntensity))
	m.ensureBuffer("Frame Uniform Buffer", &m.FrameUniformBuf, buf, wgpu.BufferUsageUniform, 0)
}

// WriteTileUniforms pushes the per-tile uniforms (§6): tile_offset,
// tile_scale, tile_max, tile_to_texture, heightmap_texture_info, height_factor.
func (m *Manager) WriteTileUniforms(offset, scale mgl32.Vec3, tileMax mgl32.Vec2, extent int, heightFactor float32) {
	buf := make([]byte, 64)
	writeVec4(buf, 0, mgl32.Vec4{offset.X(), offset.Y(), offset.Z(), 0})
	writeVec4(buf, 16, mgl32.Vec4{scale.X(), scale.Y(), scale.Z(), 0})
	writeVec4(buf, 32, mgl32.Vec4{tileMax.X(), tileMax.Y(), float32(extent-1) / float32(extent), float32(extent-1) / float32(extent)})
	binary.LittleEndian.PutUint32(buf[48:], math.Float32bits(float32(extent)))
	binary.LittleEndian.PutUint32(buf[52:], math.Float32bits(1/float32(extent)))
	binary.LittleEndian.PutUint32(buf[56:], math.Float32bits(heightFactor))
	m.ensureBuffer("Tile Uniform Buffer", &m.TileUniformBuf, buf, wgpu.BufferUsageUniform, 0)
}

// WriteLevelUniforms pushes the per-LOD-level morph_consts 4-vector (§4.5/§6).
func (m *Manager) WriteLevelUniforms(morphConsts mgl32.Vec4) {
	buf := make([]byte, 16)
	writeVec4(buf, 0, morphConsts)
	m.ensureBuffer("Level Uniform Buffer", &m.LevelUniformBuf, buf, wgpu.BufferUsageUniform, 0)
}

// WriteNodeUniforms pushes the per-node node_scale/node_offset uniforms (§6).
func (m *Manager) WriteNodeUniforms(scale mgl32.Vec4, offset mgl32.Vec3) {
	buf := make([]byte, 32)
	writeVec4(buf, 0, scale)
	writeVec4(buf, 16, mgl32.Vec4{offset.X(), offset.Y(), offset.Z(), 0})
	m.ensureBuffer("Node Uniform Buffer", &m.NodeUniformBuf, buf, wgpu.BufferUsageUniform, 0)
}

func writeMat4(buf []byte, offset int, mat mgl32.Mat4) {
	for i, v := range mat {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

func writeVec4(buf []byte, offset int, v mgl32.Vec4) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[offset+4:], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[offset+8:], math.Float32bits(v.Z()))
	binary.LittleEndian.PutUint32(buf[offset+12:], math.Float32bits(v.W()))
}

// ensureBuffer grows-or-writes buf, mirroring the ancestor's
// GpuBufferManager.ensureBuffer (voxelrt/rt/gpu/manager.go): geometric 1.5x
// growth on resize, CopyDst|CopySrc always included so a resize can copy
// forward, and a warning (not a panic) past SafeBufferSizeLimit.
func (m *Manager) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage, headroom int) bool {
	neededSize := uint64(len(data) + headroom)
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := *buf
	usage = usage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

	if current == nil || current.GetSize() < neededSize {
		newSize := neededSize
		if current != nil {
			if growth := uint64(float64(current.GetSize()) * 1.5); growth > newSize {
				newSize = growth
			}
		}
		if newSize > SafeBufferSizeLimit {
			fmt.Printf("WARNING: buffer %s allocation size %d exceeds safety limit %d\n", name, newSize, uint64(SafeBufferSizeLimit))
		}

		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            name,
			Size:             newSize,
			Usage:            usage,
			MappedAtCreation: false,
		})
		if err != nil {
			panic(err)
		}
		if current != nil {
			current.Release()
		}
		*buf = newBuf

		if len(data) > 0 {
			m.Queue.WriteBuffer(*buf, 0, data)
		}
		return true
	}

	if len(data) > 0 {
		m.Queue.WriteBuffer(*buf, 0, data)
	}
	return false
}

// Release frees every GPU resource the Manager owns. Called once at
// shutdown; each handle is owned by exactly one component (§5).
func (m *Manager) Release() {
	if m.GridVertexBuf != nil {
		m.GridVertexBuf.Release()
	}
	if m.GridIndexBuf != nil {
		m.GridIndexBuf.Release()
	}
	if m.HeightmapSampler != nil {
		m.HeightmapSampler.Release()
	}
	for _, tt := range m.tileTextures {
		tt.texture.Release()
	}
	if m.FrameUniformBuf != nil {
		m.FrameUniformBuf.Release()
	}
	if m.TileUniformBuf != nil {
		m.TileUniformBuf.Release()
	}
	if m.LevelUniformBuf != nil {
		m.LevelUniformBuf.Release()
	}
	if m.NodeUniformBuf != nil {
		m.NodeUniformBuf.Release()
	}
}
