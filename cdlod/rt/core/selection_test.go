package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSelectionBufferResetInvariants(t *testing.T) {
	sb := NewSelectionBuffer(false)
	sb.Reset(mgl32.Vec3{})

	if len(sb.Entries) != 0 {
		t.Errorf("count after reset = %d, want 0", len(sb.Entries))
	}
	if sb.MinSelectedLevel != NumberOfLodLevels {
		t.Errorf("MinSelectedLevel after reset = %d, want %d", sb.MinSelectedLevel, NumberOfLodLevels)
	}
	if sb.MaxSelectedLevel != 0 {
		t.Errorf("MaxSelectedLevel after reset = %d, want 0", sb.MaxSelectedLevel)
	}
}

// §8 scenario 1: L=5, near=1, far=4000, ratio=2.0, start_ratio=0.7 — the
// five visibility ranges (coarsest to finest) form a geometric partition
// summing to far-near with multipliers {1,2,4,8,16}/31 * 3999 + 1 cumulative
// from near.
func TestLodRangeDerivationScenario1(t *testing.T) {
	sb := NewSelectionBuffer(false)
	if err := sb.DeriveLodRanges(1, 4000, 2.0, 0.7); err != nil {
		t.Fatalf("DeriveLodRanges: %v", err)
	}

	total := float32(31) // 1+2+4+8+16
	sect := float32(3999) / total

	want := [NumberOfLodLevels]float32{}
	prev := float32(1)
	balance := float32(1)
	for i := 0; i < NumberOfLodLevels; i++ {
		level := NumberOfLodLevels - 1 - i
		want[level] = prev + sect*balance
		prev = want[level]
		balance *= 2.0
	}

	for level := 0; level < NumberOfLodLevels; level++ {
		if diff := abs32(sb.VisibilityRanges[level] - want[level]); diff > 0.01 {
			t.Errorf("VisibilityRanges[%d] = %f, want %f", level, sb.VisibilityRanges[level], want[level])
		}
	}

	// Level L-1 is finest and level 0 coarsest: ranges strictly increase
	// from fine to coarse, i.e. strictly decrease as the level index grows.
	for i := 1; i < NumberOfLodLevels; i++ {
		if sb.VisibilityRanges[i] >= sb.VisibilityRanges[i-1] {
			t.Errorf("VisibilityRanges not strictly increasing from fine to coarse at level %d: %f >= %f", i, sb.VisibilityRanges[i], sb.VisibilityRanges[i-1])
		}
	}

	for i := 0; i < NumberOfLodLevels; i++ {
		if !(1 <= sb.MorphStartRange[i] && sb.MorphStartRange[i] < sb.MorphEndRange[i] && sb.MorphEndRange[i] <= 4000) {
			t.Errorf("level %d: near <= morph_start < morph_end <= far violated (start=%f end=%f)", i, sb.MorphStartRange[i], sb.MorphEndRange[i])
		}
	}
}

func TestMorphConstsInvariant(t *testing.T) {
	sb := NewSelectionBuffer(false)
	if err := sb.DeriveLodRanges(1, 4000, 2.0, 0.7); err != nil {
		t.Fatalf("DeriveLodRanges: %v", err)
	}

	for level := 0; level < NumberOfLodLevels; level++ {
		mc := sb.MorphConsts(level)
		if diff := math.Abs(float64(mc.W() - mc.Y())); diff > 1e-6 {
			t.Errorf("level %d: morph_consts.w - morph_consts.y = %f, want 0", level, diff)
		}
	}
}

func TestDeriveLodRangesRejectsOutOfRangeRatio(t *testing.T) {
	sb := NewSelectionBuffer(false)
	if err := sb.DeriveLodRanges(1, 100, 1.0, 0.7); err == nil {
		t.Error("expected ConfigInvalid error for ratio below 1.5, got nil")
	}
	if err := sb.DeriveLodRanges(1, 100, 2.0, 1.0); err == nil {
		t.Error("expected ConfigInvalid error for startRatio outside (0,1), got nil")
	}
}

func TestSelectionOverflowCapsAtMax(t *testing.T) {
	sb := NewSelectionBuffer(false)
	sb.Reset(mgl32.Vec3{})

	overflowed := 0
	sb.SetOverflowHandler(func() { overflowed++ })

	node := &Node{}
	for i := 0; i < MaxNumberSelectedNodes+10; i++ {
		sb.Add(NodeIndex(i), node, i%NumberOfLodLevels, true, true, true, true)
	}

	if len(sb.Entries) != MaxNumberSelectedNodes {
		t.Errorf("count = %d, want exactly %d", len(sb.Entries), MaxNumberSelectedNodes)
	}
	if overflowed != 1 {
		t.Errorf("overflow handler invoked %d times, want exactly 1 (logged once per frame)", overflowed)
	}
}
