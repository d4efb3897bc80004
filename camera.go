package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent is the ECS component describing a perspective camera.
// FlyingCameraControlSystem drives Yaw/Pitch/Position and keeps LookAt/Up
// in sync every frame; renderer systems only ever read Position/LookAt/Up/Fov/Aspect/Near/Far.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3

	Yaw   float32
	Pitch float32

	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
}

// ViewMatrix builds the camera's view matrix from its current pose.
func (cam *CameraComponent) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(cam.Position, cam.LookAt, cam.Up)
}

// ProjectionMatrix builds the camera's perspective projection matrix.
func (cam *CameraComponent) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(cam.Fov), cam.Aspect, cam.Near, cam.Far)
}

// Forward returns the camera's normalized forward vector (LookAt - Position).
func (cam *CameraComponent) Forward() mgl32.Vec3 {
	return cam.LookAt.Sub(cam.Position).Normalize()
}
