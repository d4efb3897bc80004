package terrain

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	rtapp "github.com/kestrel3d/cdlod-terrain/cdlod/rt/app"
	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/core"
	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/gpu"
	"github.com/kestrel3d/cdlod-terrain/cdlod/rt/mesh"
)

// TerrainTileSpec names the two assets a resident tile is loaded from: a
// 16-bit grayscale PNG heightmap and its world-space AABB sidecar.
type TerrainTileSpec struct {
	HeightmapPath string
	SidecarPath   string
}

// TerrainModule is the CDLOD terrain renderer, installed via
// App.UseTerrain/UseRendererWithWindow. WindowWidth/WindowHeight/WindowTitle
// record the window parameters renderer_select.go's UseTerrain was given;
// the window itself is created from UseRendererWithWindow's arguments and
// Install does not read these fields. Tiles/SortSelection configure the
// terrain itself.
type TerrainModule struct {
	WindowWidth  int
	WindowHeight int
	WindowTitle  string

	Tiles []TerrainTileSpec

	// SortSelection enables the optional distance sort described in §3; off
	// by default since emission order only needs tile/level grouping.
	SortSelection bool
}

// Terrain is the per-frame orchestrator resource (§2 "Terrain"): it holds
// the loaded tiles, the shared grid patch mesh, the GPU resource manager,
// and the selection buffer reused every frame.
type Terrain struct {
	GpuApp *rtapp.App
	Gpu    *gpu.Manager
	Mesh   *mesh.GridPatchMesh

	Tiles     []*core.Tile
	Selection *core.SelectionBuffer

	viewProj  mgl32.Mat4
	cameraPos mgl32.Vec3
}

func (t *Terrain) tileByIndex(index int) *core.Tile {
	for _, tile := range t.Tiles {
		if tile.Index == index {
			return tile
		}
	}
	return nil
}

// Install validates the compile-time constants, bootstraps the GPU device
// against the shared window, loads every configured tile, uploads the grid
// patch mesh and per-tile heightmap textures, and wires the selection system
// into PreRender and the emission system into Render, per the ancestor's own
// renderer-module convention (§ AMBIENT STACK).
func (m TerrainModule) Install(app *App, cmd *Commands) {
	if err := core.ValidateConstants(); err != nil {
		app.Logger().Errorf("terrain constants invalid: %v", err)
		panic(err)
	}

	ws := getWindowState(app)

	gpuApp := rtapp.NewApp(ws.windowGlfw)
	if err := gpuApp.Init(); err != nil {
		app.Logger().Errorf("terrain GPU init failed: %v", err)
		panic(err)
	}

	mgr := gpu.NewManager(gpuApp.Device, gpuApp.Queue)
	mgr.EnsureSampler(gpu.SamplerLinearClamp)

	gridMesh, err := mesh.NewGridPatchMesh(core.GridmeshDimension)
	if err != nil {
		app.Logger().Errorf("terrain grid mesh build failed: %v", err)
		panic(err)
	}
	mgr.EnsureGridMesh(gridMesh)

	tiles := make([]*core.Tile, 0, len(m.Tiles))
	for i, spec := range m.Tiles {
		tile, err := core.LoadTile(spec.HeightmapPath, spec.SidecarPath, i)
		if err != nil {
			app.Logger().Errorf("terrain tile %d load failed: %v", i, err)
			panic(err)
		}
		mgr.EnsureHeightmapTexture(tile.Index, tile.Heightmap)
		tiles = append(tiles, tile)
		app.Logger().Infof("loaded terrain tile %d (%s): %dx%d, %d nodes", i, tile.ID, tile.Heightmap.Extent, tile.Heightmap.Extent, len(tile.Quadtree.Arena))
	}

	sel := core.NewSelectionBuffer(m.SortSelection)
	sel.SetOverflowHandler(func() {
		app.Logger().Warnf("selection buffer overflow: exceeded %d entries", core.MaxNumberSelectedNodes)
	})

	terrain := &Terrain{
		GpuApp:    gpuApp,
		Gpu:       mgr,
		Mesh:      gridMesh,
		Tiles:     tiles,
		Selection: sel,
	}
	cmd.AddResources(terrain)

	app.UseSystem(
		System(terrainSelectSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(terrainEmitSystem).
			InStage(Render).
			RunAlways(),
	)
}

func getWindowState(app *App) *WindowState {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		if ws, ok2 := res.(*WindowState); ok2 {
			return ws
		}
	}
	panic("TerrainModule: no WindowState resource; install via App.UseTerrain or UseRendererWithWindow")
}

// terrainSelectSystem runs the recursive LOD selection (§4.6) against every
// resident tile's root nodes, once per frame, using the first entity
// carrying a CameraComponent. Selection results accumulate in
// Terrain.Selection for terrainEmitSystem to consume in the next stage.
func terrainSelectSystem(t *Terrain, cmd *Commands) {
	MakeQuery1[CameraComponent](cmd).Map(func(eid EntityId, cam *CameraComponent) bool {
		frustum := core.NewFrustum(cam.Position, cam.Forward(), cam.Up, cam.Near, cam.Far, mgl32.DegToRad(cam.Fov), cam.Aspect)

		t.Selection.Reset(cam.Position)
		if err := t.Selection.DeriveLodRanges(cam.Near, cam.Far, core.LodLevelDistanceRatio, core.MorphStartRatio); err != nil {
			panic(err)
		}

		for _, tile := range t.Tiles {
			t.Selection.SetTileIndex(tile.Index)
			for _, row := range tile.Quadtree.Roots {
				for _, rootIdx := range row {
					core.LodSelect(tile.Quadtree, rootIdx, &frustum, t.Selection, false)
				}
			}
		}
		t.Selection.Sort()

		t.viewProj = cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
		t.cameraPos = cam.Position

		return false // only the first camera drives terrain selection
	})
}

// terrainEmitSystem turns the filled selection buffer into the minimized
// draw-record stream (§4.7/§4.8) and pushes the frame/tile/level/node
// uniforms each record needs. Issuing the actual indexed draw calls against
// Terrain.Gpu's grid mesh buffers is the shader/pipeline layer's job, which
// is explicitly out of scope (§1) — this system's contract ends at the
// uniforms the vertex-stage morph blend consumes.
func terrainEmitSystem(t *Terrain, cmd *Commands) {
	if len(t.Selection.Entries) == 0 {
		return
	}

	lightPosW := mgl32.Vec4{0, 1, 0, 0} // default: directional light from straight above
	lightIntensity := float32(1.0)
	MakeQuery1[LightComponent](cmd).Map(func(eid EntityId, light *LightComponent) bool {
		w := float32(0)
		if light.Type != LightTypeDirectional {
			w = 1
		}
		lightPosW = mgl32.Vec4{light.Position.X(), light.Position.Y(), light.Position.Z(), w}
		lightIntensity = light.Intensity
		return false // only the first light feeds the frame uniform buffer
	})

	t.Gpu.WriteFrameUniforms(t.viewProj, t.cameraPos, lightPosW, lightIntensity)

	plan := core.BuildEmissionPlan(t.Selection, len(t.Tiles), t.tileByIndex)

	for _, rec := range plan {
		if rec.TileChanged {
			tile := t.tileByIndex(rec.TileIndex)
			offset := tile.AABB.Min
			scale := tile.AABB.Max.Sub(tile.AABB.Min)
			tileMax := mgl32.Vec2{tile.AABB.Max.X(), tile.AABB.Max.Z()}
			t.Gpu.WriteTileUniforms(offset, scale, tileMax, tile.Heightmap.Extent, core.HeightFactor)
		}
		if rec.LevelChanged {
			t.Gpu.WriteLevelUniforms(t.Selection.MorphConsts(rec.LodLevel))
		}
		t.Gpu.WriteNodeUniforms(rec.NodeScale, rec.NodeOffset)
	}
}
