package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is a world-space axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the AABB's midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfDiagonal returns half of the vector from Min to Max.
func (b AABB) HalfDiagonal() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// BoundingSphereRadius approximates the AABB as a sphere centered at Center(),
// per §4.2 ("AABB: approximated via its bounding sphere").
func (b AABB) BoundingSphereRadius() float32 {
	d := b.HalfDiagonal()
	return float32(math.Sqrt(float64(d.Dot(d))))
}

// MinDistanceSqToPoint returns the squared distance from p to the closest
// point on or in the box.
func (b AABB) MinDistanceSqToPoint(p mgl32.Vec3) float32 {
	dx := clampDist(p.X(), b.Min.X(), b.Max.X())
	dy := clampDist(p.Y(), b.Min.Y(), b.Max.Y())
	dz := clampDist(p.Z(), b.Min.Z(), b.Max.Z())
	return dx*dx + dy*dy + dz*dz
}

func clampDist(v, lo, hi float32) float32 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

// IntersectsSphere reports whether the box itself (not a bounding-sphere
// approximation of it) comes within radius of center: the exact point-to-box
// distance must not exceed radius. Used by the range test in §4.6 (node vs.
// visibility_ranges[level]), which tests the node's AABB directly.
func (b AABB) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	return b.MinDistanceSqToPoint(center) <= radius*radius
}
