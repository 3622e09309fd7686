package components

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The intents the camera reacts to on its next update. */
type CameraIntent uint16

const (
	CAMERA_ROTATE_LEFT CameraIntent = 1 << iota
	CAMERA_ROTATE_RIGHT
	CAMERA_ROTATE_UP
	CAMERA_ROTATE_DOWN
	CAMERA_PAN_LEFT
	CAMERA_PAN_RIGHT
	CAMERA_PAN_UP
	CAMERA_PAN_DOWN
	CAMERA_PAN_FORWARD
	CAMERA_PAN_BACKWARD
)

const (
	DEFAULT_CAMERA_ANGLE_SPEED    float32 = 1.0
	DEFAULT_CAMERA_MOVEMENT_SPEED float32 = 2.0
)

/**
 * @brief A free-look camera defined by an eye, a target and an up vector.
 * Intents are held as flags and applied on every Update; nothing accumulates
 * as velocity between frames.
 */
type Camera struct {
	/** @brief World position of the eye. */
	Eye math.Vec3
	/** @brief The point the camera looks at. */
	Target math.Vec3
	/**
	 * @brief Approximate up direction. Rotating up or down tilts it along
	 * with the view direction, so it drifts under repeated pitching.
	 */
	Up math.Vec3
	/** @brief Radians per second applied by rotate intents. */
	AngleSpeed float32
	/** @brief World units per second applied by pan intents. */
	MovementSpeed float32

	intents    CameraIntent
	viewMatrix math.Mat4
}

func NewCamera(eye, up, target math.Vec3) *Camera {
	return &Camera{
		Eye:           eye,
		Target:        target,
		Up:            up,
		AngleSpeed:    DEFAULT_CAMERA_ANGLE_SPEED,
		MovementSpeed: DEFAULT_CAMERA_MOVEMENT_SPEED,
		viewMatrix:    math.NewMat4LookAtRH(eye, target, up),
	}
}

// SetIntent raises or clears a single intent flag.
func (c *Camera) SetIntent(intent CameraIntent, active bool) {
	if active {
		c.intents |= intent
	} else {
		c.intents &^= intent
	}
}

func (c *Camera) HasIntent(intent CameraIntent) bool {
	return c.intents&intent != 0
}

func (c *Camera) ClearIntents() {
	c.intents = 0
}

func (c *Camera) GetView() math.Mat4 {
	return c.viewMatrix
}

// basis returns the normalized forward axis, the right axis and the corrected up.
func (c *Camera) basis() (z, x, y math.Vec3) {
	z = c.Target.Sub(c.Eye).Normalized()
	x = z.Cross(c.Up).Normalized()
	y = z.Cross(x)
	return z, x, y
}

// direction returns +1 when only positive is active, -1 when only negative is
// active and 0 when neither or both are.
func (c *Camera) direction(positive, negative CameraIntent) float32 {
	p, n := c.HasIntent(positive), c.HasIntent(negative)
	switch {
	case p && !n:
		return 1
	case !p && n:
		return -1
	default:
		return 0
	}
}

func (c *Camera) RotateLeftRight(angle float32) {
	z, _, y := c.basis()
	rotation := math.NewMat4RotationNormal(y, angle)
	c.Target = c.Eye.Add(z.TransformNormal(rotation))
}

func (c *Camera) RotateUpDown(angle float32) {
	z, x, _ := c.basis()
	rotation := math.NewMat4RotationNormal(x, angle)
	c.Target = c.Eye.Add(z.TransformNormal(rotation))
	c.Up = c.Up.TransformNormal(rotation)
}

func (c *Camera) PanLeftRight(amount float32) {
	_, x, _ := c.basis()
	c.move(x.MulScalar(amount))
}

func (c *Camera) PanUpDown(amount float32) {
	_, _, y := c.basis()
	c.move(y.MulScalar(amount))
}

func (c *Camera) PanForwardBackward(amount float32) {
	z, _, _ := c.basis()
	c.move(z.MulScalar(amount))
}

func (c *Camera) move(delta math.Vec3) {
	c.Eye = c.Eye.Add(delta)
	c.Target = c.Target.Add(delta)
}

/**
 * @brief Applies the active intents for the elapsed time of timer, rebuilds
 * the view matrix and writes it, transposed, into constants together with the
 * homogeneous eye position.
 */
func (c *Camera) Update(timer core.Timer, constants *metadata.CameraConstants) {
	elapsed := float32(timer.ElapsedSeconds())
	angle := c.AngleSpeed * elapsed
	movement := c.MovementSpeed * elapsed

	if d := c.direction(CAMERA_ROTATE_LEFT, CAMERA_ROTATE_RIGHT); d != 0 {
		c.RotateLeftRight(d * angle)
	}
	if d := c.direction(CAMERA_ROTATE_UP, CAMERA_ROTATE_DOWN); d != 0 {
		c.RotateUpDown(d * angle)
	}
	if d := c.direction(CAMERA_PAN_LEFT, CAMERA_PAN_RIGHT); d != 0 {
		c.PanLeftRight(d * movement)
	}
	if d := c.direction(CAMERA_PAN_UP, CAMERA_PAN_DOWN); d != 0 {
		c.PanUpDown(d * movement)
	}
	if d := c.direction(CAMERA_PAN_FORWARD, CAMERA_PAN_BACKWARD); d != 0 {
		c.PanForwardBackward(d * movement)
	}

	c.viewMatrix = math.NewMat4LookAtRH(c.Eye, c.Target, c.Up)
	if constants != nil {
		constants.View = c.viewMatrix.Transposed()
		constants.EyePosition = c.Eye.ToVec4(1.0)
	}
}
