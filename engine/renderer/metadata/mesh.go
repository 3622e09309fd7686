package metadata

/**
 * @brief A parsed text mesh: vertexCount rows of floats followed by indices.
 * Rows keep the column count of the source file.
 */
type MeshData struct {
	Name string
	/** @brief Number of float columns in every row. */
	Columns int
	Rows    [][]float32
	Indices []uint32
}

func (md *MeshData) VertexCount() int {
	return len(md.Rows)
}

/**
 * @brief A parsed spline file: patches of four control points. Each row holds
 * a position followed by a bitangent.
 */
type CurveData struct {
	Name       string
	PatchCount int
	Rows       [][]float32
}
