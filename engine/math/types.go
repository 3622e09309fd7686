package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 row-major matrix. Vectors are treated as rows and multiplied
 * on the left, so translation lives in elements 12, 13 and 14.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief Represents the placement of an object in the scene: a position,
 * a rotation around the world Y axis and a non-uniform scale.
 */
type Transform struct {
	/** @brief The position in the world. */
	Position Vec3
	/** @brief Rotation around +Y, in radians. */
	Yaw float32
	/** @brief The scale in the world. */
	Scale Vec3
}
