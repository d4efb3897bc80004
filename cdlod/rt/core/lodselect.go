package core

// LodSelect implements the recursive node selection algorithm of §4.6. It is
// called once per root node per tile, per frame, with parentFullyInside =
// false.
func LodSelect(qt *Quadtree, idx NodeIndex, frustum *Frustum, sel *SelectionBuffer, parentFullyInside bool) SelectResult {
	node := &qt.Arena[idx]

	// 1. Frustum test.
	fullyInside := parentFullyInside
	if !parentFullyInside {
		switch frustum.TestAABB(node.AABB) {
		case Outside:
			return ResultOutside
		case Inside:
			fullyInside = true
		}
	}

	// 2. Range test.
	r := sel.VisibilityRanges[node.Level]
	if !node.AABB.IntersectsSphere(frustum.Position, r) {
		return ResultOutOfRange
	}

	// 3. Descent: only recurse if the node is at least partly within the
	// next (finer) level's visibility range.
	var childResults [4]SelectResult
	var childDescended [4]bool
	childPresent := [4]bool{
		node.Children[TL] != NoNode,
		node.Children[TR] != NoNode,
		node.Children[BL] != NoNode,
		node.Children[BR] != NoNode,
	}
	anySelected := false

	if node.Level < NumberOfLodLevels-1 {
		rNext := sel.VisibilityRanges[node.Level+1]
		if node.AABB.IntersectsSphere(frustum.Position, rNext) {
			for q := 0; q < 4; q++ {
				if !childPresent[q] {
					continue
				}
				childResults[q] = LodSelect(qt, node.Children[q], frustum, sel, fullyInside)
				childDescended[q] = true
				if childResults[q] == ResultSelected {
					anySelected = true
				}
			}
		}
	}

	// 4. Quadrant flags: a present, descended-into child "handles" its
	// quadrant (removed from this node's own emission) iff it resolved
	// SELECTED or OUTSIDE. An absent child's footprint exceeds the
	// heightmap extent and has no geometry to emit, so it is also treated
	// as handled (remove = true). A present child that resolved
	// OUT_OF_RANGE, or was never descended into, leaves its quadrant for
	// the parent to cover.
	remove := [4]bool{true, true, true, true}
	for q := 0; q < 4; q++ {
		if !childPresent[q] {
			continue // absent: remove stays true
		}
		if !childDescended[q] {
			remove[q] = false
			continue
		}
		switch childResults[q] {
		case ResultSelected, ResultOutside:
			remove[q] = true
		default:
			remove[q] = false
		}
	}

	// 5. Emit, if this node must cover at least one quadrant.
	if !(remove[TL] && remove[TR] && remove[BL] && remove[BR]) {
		lodLevel := NumberOfLodLevels - 1 - node.Level
		if sel.Add(idx, node, lodLevel, !remove[TL], !remove[TR], !remove[BL], !remove[BR]) {
			return ResultSelected
		}
		return ResultOutside
	}

	// 6. Fallthrough.
	if anySelected {
		return ResultSelected
	}
	return ResultOutside
}
