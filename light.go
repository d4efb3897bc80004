package terrain

import "github.com/go-gl/mathgl/mgl32"

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS component for lights. terrainEmitSystem reads
// the first entity carrying one to fill the frame uniform buffer's light
// slot. A directional light (the common terrain case) is distinguished by
// Type and sent with w=0, so its Position holds the light's direction.
type LightComponent struct {
	Type      LightType  `terrain:"light" usage:"type"`
	Position  mgl32.Vec3 `terrain:"light" usage:"position"`
	Color     [3]float32 `terrain:"light" usage:"color"` // RGB
	Intensity float32    `terrain:"light" usage:"intensity"`
	Range     float32    `terrain:"light" usage:"range"`      // For point/spot
	ConeAngle float32    `terrain:"light" usage:"cone_angle"` // Full cone angle in degrees (spot)
}
