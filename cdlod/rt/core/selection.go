package core

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// SelectResult is the outcome of a single node's lod_select call (§4.6).
type SelectResult int

const (
	ResultOutside SelectResult = iota
	ResultIntersects
	ResultInside
	ResultOutOfRange
	ResultSelected
)

// SelectedEntry is one record in the LOD selection buffer: a node plus which
// of its four quadrants the renderer must emit at its own LOD (§3).
type SelectedEntry struct {
	NodeIndex    NodeIndex
	TileIndex    int
	LodLevel     int
	HasTL        bool
	HasTR        bool
	HasBL        bool
	HasBR        bool
	MinDistToCam float32
}

// SelectionBuffer is the process-wide-but-explicitly-owned, per-frame
// scratch buffer described in §3/§9: a fixed-capacity slice the driver
// resets, fills, optionally sorts, and iterates once per frame. It is never
// a hidden global — the driver (Terrain) owns one instance and frees to
// hold several (e.g. one per view).
type SelectionBuffer struct {
	Entries []SelectedEntry

	VisibilityRanges [NumberOfLodLevels]float32
	MorphStartRange  [NumberOfLodLevels]float32
	MorphEndRange    [NumberOfLodLevels]float32

	MinSelectedLevel int
	MaxSelectedLevel int

	CurrentTileIndex int
	SortEnabled      bool

	cameraPos          mgl32.Vec3
	overflowLoggedFrame bool
	onOverflow          func()
}

// NewSelectionBuffer preallocates the fixed-capacity entry slice so the hot
// path performs zero per-frame allocation (§5).
func NewSelectionBuffer(sortEnabled bool) *SelectionBuffer {
	return &SelectionBuffer{
		Entries:     make([]SelectedEntry, 0, MaxNumberSelectedNodes),
		SortEnabled: sortEnabled,
	}
}

// Reset begins a new frame: count goes to zero, min/max collapse to their
// empty-buffer sentinels (§3 invariants).
func (s *SelectionBuffer) Reset(cameraPos mgl32.Vec3) {
	s.Entries = s.Entries[:0]
	s.MinSelectedLevel = NumberOfLodLevels
	s.MaxSelectedLevel = 0
	s.cameraPos = cameraPos
	s.overflowLoggedFrame = false
}

// SetOverflowHandler installs the callback invoked at most once per frame
// when Add is called against a full buffer (§4.6 step 5, §7 ResourceExhausted
// selection overflow). TerrainModule wires this to app.Logger().Warnf.
func (s *SelectionBuffer) SetOverflowHandler(fn func()) {
	s.onOverflow = fn
}

// SetTileIndex marks that subsequent Add calls belong to tile i.
func (s *SelectionBuffer) SetTileIndex(i int) {
	s.CurrentTileIndex = i
}

// Add appends a selection entry if capacity remains. It reports whether the
// entry was appended; callers use this to detect the "buffer full" path in
// §4.6 step 5 (log once per frame, return OUTSIDE).
func (s *SelectionBuffer) Add(nodeIndex NodeIndex, node *Node, lodLevel int, tl, tr, bl, br bool) bool {
	if len(s.Entries) >= MaxNumberSelectedNodes {
		if !s.overflowLoggedFrame {
			s.overflowLoggedFrame = true
			if s.onOverflow != nil {
				s.onOverflow()
			}
		}
		return false
	}

	entry := SelectedEntry{
		NodeIndex: nodeIndex,
		TileIndex: s.CurrentTileIndex,
		LodLevel:  lodLevel,
		HasTL:     tl, HasTR: tr, HasBL: bl, HasBR: br,
	}
	if s.SortEnabled {
		distSq := node.AABB.MinDistanceSqToPoint(s.cameraPos)
		entry.MinDistToCam = float32(math.Sqrt(float64(distSq)))
	}
	s.Entries = append(s.Entries, entry)

	if lodLevel < s.MinSelectedLevel {
		s.MinSelectedLevel = lodLevel
	}
	if lodLevel > s.MaxSelectedLevel {
		s.MaxSelectedLevel = lodLevel
	}
	return true
}

// Sort reorders entries by ascending distance to camera when sorting is
// enabled; it is a no-op (insertion order preserved) otherwise, per §5.
func (s *SelectionBuffer) Sort() {
	if !s.SortEnabled {
		return
	}
	sort.SliceStable(s.Entries, func(i, j int) bool {
		return s.Entries[i].MinDistToCam < s.Entries[j].MinDistToCam
	})
}

// DeriveLodRanges computes visibility_ranges, morph_start, and morph_end
// from the camera's near/far planes, per §4.5.
func (s *SelectionBuffer) DeriveLodRanges(near, far, ratio, startRatio float32) error {
	if ratio < 1.5 || ratio > 16.0 {
		return &ConfigInvalidError{Field: "ratio", Reason: "must be in [1.5, 16.0]"}
	}
	if startRatio <= 0 || startRatio >= 1 {
		return &ConfigInvalidError{Field: "startRatio", Reason: "must be in (0, 1)"}
	}

	var total float32
	balance := float32(1)
	for i := 0; i < NumberOfLodLevels; i++ {
		total += balance
		balance *= ratio
	}
	sect := (far - near) / total

	prev := near
	balance = 1
	for i := 0; i < NumberOfLodLevels; i++ {
		level := NumberOfLodLevels - 1 - i
		s.VisibilityRanges[level] = prev + sect*balance
		prev = s.VisibilityRanges[level]
		balance *= ratio
	}

	prev = near
	for i := 0; i < NumberOfLodLevels; i++ {
		end := s.VisibilityRanges[NumberOfLodLevels-1-i]
		s.MorphEndRange[i] = end
		start := prev + (end-prev)*startRatio
		s.MorphStartRange[i] = start
		prev = start
	}

	return nil
}

// MorphConsts packs the per-level morph constants passed to the shader as a
// 4-vector, per §4.5: (start, 1/d, end_adj/d, 1/d), where end_adj backs the
// range end off by 1% to avoid exact equality with start.
func (s *SelectionBuffer) MorphConsts(level int) mgl32.Vec4 {
	start := s.MorphStartRange[level]
	end := s.MorphEndRange[level]
	endAdj := lerp(end, start, 0.01)
	d := endAdj - start
	invD := 1 / d
	return mgl32.Vec4{start, invD, endAdj * invD, invD}
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
