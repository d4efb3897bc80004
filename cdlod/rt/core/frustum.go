package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// IntersectResult is the outcome of a radar frustum test.
type IntersectResult int

const (
	Outside IntersectResult = iota
	Intersects
	Inside
)

// Frustum is a radar-style view frustum test object: a camera position, an
// orthonormal basis, near/far planes, and a vertical half-angle/aspect. It
// avoids explicit plane equations in favor of projecting a test point onto
// the camera basis and comparing against a cone/slab, per §4.2.
type Frustum struct {
	Position mgl32.Vec3
	X, Y, Z  mgl32.Vec3 // orthonormal camera basis: X=right, Y=up, Z=forward

	Near, Far float32
	Angle     float32 // vertical FOV, radians
	Aspect    float32

	tangent float32

	// Precomputed sphere-intersection compensation factors.
	sphereFactorY float32
	sphereFactorX float32
}

// NewFrustum builds a Frustum from a camera pose and projection parameters.
// forward/up need not be orthonormal to each other on input; the basis is
// re-derived (right = forward×up, up' = right×forward) so X, Y, Z end up
// mutually orthonormal.
func NewFrustum(position, forward, up mgl32.Vec3, near, far, verticalFovRadians, aspect float32) Frustum {
	z := forward.Normalize()
	x := z.Cross(up).Normalize()
	y := x.Cross(z).Normalize()

	tangent := float32(math.Tan(float64(verticalFovRadians) / 2))

	return Frustum{
		Position:      position,
		X:             x,
		Y:             y,
		Z:             z,
		Near:          near,
		Far:           far,
		Angle:         verticalFovRadians,
		Aspect:        aspect,
		tangent:       tangent,
		sphereFactorY: 1 / float32(math.Cos(float64(verticalFovRadians)/2)),
		sphereFactorX: 1 / float32(math.Cos(math.Atan(float64(tangent*aspect)))),
	}
}

// TestPoint classifies a single world-space point. Tie-breaks at exact plane
// equality resolve to INSIDE (inclusive), per §4.2.
func (f *Frustum) TestPoint(p mgl32.Vec3) IntersectResult {
	v := p.Sub(f.Position)
	pz := v.Dot(f.Z)

	if pz > f.Far || pz < f.Near {
		return Outside
	}

	py := v.Dot(f.Y)
	if abs32(py) > pz*f.tangent {
		return Outside
	}

	px := v.Dot(f.X)
	if abs32(px) > pz*f.tangent*f.Aspect {
		return Outside
	}

	return Inside
}

// TestSphere classifies a sphere (center, radius) against the frustum:
// Z-slab test first, then Y-cone, then X-cone, each widened by the sphere's
// radius (scaled by the precomputed compensation factors for the cone
// tests). Returns OUTSIDE, INTERSECTS, or INSIDE.
func (f *Frustum) TestSphere(center mgl32.Vec3, radius float32) IntersectResult {
	v := center.Sub(f.Position)
	pz := v.Dot(f.Z)

	if pz > f.Far+radius || pz < f.Near-radius {
		return Outside
	}
	slabIntersects := pz > f.Far-radius || pz < f.Near+radius

	py := v.Dot(f.Y)
	dy := f.sphereFactorY * radius
	yLimit := pz * f.tangent
	if abs32(py) > yLimit+dy {
		return Outside
	}
	yIntersects := abs32(py) > yLimit-dy

	px := v.Dot(f.X)
	dx := f.sphereFactorX * radius
	xLimit := pz * f.tangent * f.Aspect
	if abs32(px) > xLimit+dx {
		return Outside
	}
	xIntersects := abs32(px) > xLimit-dx

	if slabIntersects || yIntersects || xIntersects {
		return Intersects
	}
	return Inside
}

// TestAABB approximates the box via its bounding sphere, per §4.2.
func (f *Frustum) TestAABB(b AABB) IntersectResult {
	return f.TestSphere(b.Center(), b.BoundingSphereRadius())
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
