package math

func TransformFromPosition(position Vec3) Transform {
	return Transform{Position: position, Scale: NewVec3One()}
}

func TransformFromPositionYawScale(position Vec3, yaw float32, scale Vec3) Transform {
	return Transform{Position: position, Yaw: yaw, Scale: scale}
}

/**
 * @brief Builds the local matrix: scale, then rotation around Y, then translation.
 */
func (t Transform) Local() Mat4 {
	return NewMat4Scale(t.Scale).Mul(NewMat4RotationY(t.Yaw)).Mul(NewMat4Translation(t.Position))
}
