package metadata

import "github.com/spaghettifunk/prism/engine/math"

/**
 * @brief Constant buffer records. Layouts follow 16-byte packing and every
 * matrix is stored transposed.
 */

/** @brief A position and colour vertex used by the screen quad and point sprites. */
type VertexPositionColor struct {
	Position math.Vec3
	Colour   math.Vec3
}

/** @brief Camera state, bound at slot 0 of every stage. */
type CameraConstants struct {
	Model       math.Mat4
	View        math.Mat4
	Projection  math.Mat4
	EyePosition math.Vec4
}

/** @brief Per-draw object transform, bound at slot 1. */
type ObjectConstants struct {
	World        math.Mat4
	InverseWorld math.Mat4
}

/** @brief A single point light, bound at pixel slot 2. */
type LightConstants struct {
	Position math.Vec4
	Colour   math.Vec4
	Ambient  math.Vec4
}

/** @brief Tessellation controls, bound at hull and domain slot 3. */
type TessellationConstants struct {
	Factor      float32
	HeightScale float32
	Padding     [2]float32
}

/** @brief Frame timing and viewport size, bound at slot 4. */
type FrameConstants struct {
	TotalSeconds   float32
	ElapsedSeconds float32
	Width          float32
	Height         float32
}

/** @brief Ray tracing and ray marching controls, bound at pixel slot 5. */
type RayConstants struct {
	LightPosition math.Vec4
	/** @brief Maximum march steps, hit epsilon, maximum distance and reflection bounces. */
	MaxSteps          float32
	HitEpsilon        float32
	MaxDistance       float32
	ReflectionBounces float32
}

const (
	CAMERA_CONSTANTS_SLOT       uint32 = 0
	OBJECT_CONSTANTS_SLOT       uint32 = 1
	LIGHT_CONSTANTS_SLOT        uint32 = 2
	TESSELLATION_CONSTANTS_SLOT uint32 = 3
	FRAME_CONSTANTS_SLOT        uint32 = 4
	RAY_CONSTANTS_SLOT          uint32 = 5
)
