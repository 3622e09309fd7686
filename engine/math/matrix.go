package math

/**
 * @brief Creates and returns an identity matrix.
 */
func NewMat4Identity() Mat4 {
	out := Mat4{}
	out.Data[0] = 1.0
	out.Data[5] = 1.0
	out.Data[10] = 1.0
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Returns mt * other. With row vectors the result applies mt first.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out.Data[row*4+col] = sum
		}
	}
	return out
}

/**
 * @brief Returns a transposed copy of the matrix (rows->colums). Shader
 * constant buffers expect column-major data, so every matrix is transposed
 * before upload.
 */
func (mt Mat4) Transposed() Mat4 {
	out := Mat4{}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out.Data[col*4+row] = mt.Data[row*4+col]
		}
	}
	return out
}

/**
 * @brief Creates a right-handed view matrix looking from eye at target.
 *
 * @param eye The camera position.
 * @param target The position to "look at".
 * @param up The up vector.
 * @return The view matrix.
 */
func NewMat4LookAtRH(eye, target, up Vec3) Mat4 {
	// right-handed: the view basis z axis points from the target back to the eye
	zAxis := eye.Sub(target).Normalized()
	xAxis := up.Cross(zAxis).Normalized()
	yAxis := zAxis.Cross(xAxis)
	negEye := eye.Negate()

	out := Mat4{}
	out.Data[0] = xAxis.X
	out.Data[1] = yAxis.X
	out.Data[2] = zAxis.X
	out.Data[4] = xAxis.Y
	out.Data[5] = yAxis.Y
	out.Data[6] = zAxis.Y
	out.Data[8] = xAxis.Z
	out.Data[9] = yAxis.Z
	out.Data[10] = zAxis.Z
	out.Data[12] = xAxis.Dot(negEye)
	out.Data[13] = yAxis.Dot(negEye)
	out.Data[14] = zAxis.Dot(negEye)
	out.Data[15] = 1.0
	return out
}

/**
 * @brief Creates a right-handed perspective projection mapping depth to [0, 1].
 *
 * @param fovRadians The vertical field of view in radians.
 * @param aspectRatio Width divided by height.
 * @param nearClip The near clipping plane distance.
 * @param farClip The far clipping plane distance.
 */
func NewMat4PerspectiveFovRH(fovRadians, aspectRatio, nearClip, farClip float32) Mat4 {
	h := kcos(0.5*fovRadians) / ksin(0.5*fovRadians)
	w := h / aspectRatio
	fRange := farClip / (nearClip - farClip)

	out := Mat4{}
	out.Data[0] = w
	out.Data[5] = h
	out.Data[10] = fRange
	out.Data[11] = -1.0
	out.Data[14] = fRange * nearClip
	return out
}

func NewMat4Translation(position Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[12] = position.X
	out.Data[13] = position.Y
	out.Data[14] = position.Z
	return out
}

func NewMat4Scale(scale Vec3) Mat4 {
	out := NewMat4Identity()
	out.Data[0] = scale.X
	out.Data[5] = scale.Y
	out.Data[10] = scale.Z
	return out
}

/**
 * @brief Creates a rotation of angleRadians around the +Y axis.
 */
func NewMat4RotationY(angleRadians float32) Mat4 {
	c := kcos(angleRadians)
	s := ksin(angleRadians)
	out := NewMat4Identity()
	out.Data[0] = c
	out.Data[2] = -s
	out.Data[8] = s
	out.Data[10] = c
	return out
}

/**
 * @brief Creates a rotation of angleRadians around a unit-length axis.
 *
 * @param axis The rotation axis. Must already be normalized.
 * @param angleRadians The rotation angle.
 */
func NewMat4RotationNormal(axis Vec3, angleRadians float32) Mat4 {
	s := ksin(angleRadians)
	c := kcos(angleRadians)
	t := 1.0 - c
	x, y, z := axis.X, axis.Y, axis.Z

	out := NewMat4Identity()
	out.Data[0] = x*x*t + c
	out.Data[1] = x*y*t + s*z
	out.Data[2] = x*z*t - s*y

	out.Data[4] = x*y*t - s*z
	out.Data[5] = y*y*t + c
	out.Data[6] = y*z*t + s*x

	out.Data[8] = x*z*t + s*y
	out.Data[9] = y*z*t - s*x
	out.Data[10] = z*z*t + c
	return out
}

/**
 * @brief Returns the inverse of mt. The second value is false when mt is
 * singular, in which case the identity is returned.
 */
func (mt Mat4) Inverse() (Mat4, bool) {
	m := &mt.Data
	out := Mat4{}
	o := &out.Data

	o[0] = m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] + m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	o[4] = -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] - m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	o[8] = m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] + m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	o[12] = -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] - m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]
	o[1] = -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] - m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	o[5] = m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] + m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	o[9] = -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] - m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	o[13] = m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] + m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]
	o[2] = m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] + m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	o[6] = -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] - m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	o[10] = m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] + m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	o[14] = -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] - m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]
	o[3] = -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] - m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]
	o[7] = m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] + m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]
	o[11] = -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] - m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]
	o[15] = m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] + m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	det := m[0]*o[0] + m[1]*o[4] + m[2]*o[8] + m[3]*o[12]
	if det == 0 {
		return NewMat4Identity(), false
	}
	invDet := 1.0 / det
	for i := range o {
		o[i] *= invDet
	}
	return out, true
}

// Compare reports whether every element of mt and other differ by at most tolerance.
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
