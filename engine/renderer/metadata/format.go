package metadata

/** @brief The element format of a texture, view, vertex attribute or index buffer. */
type Format int

const (
	FORMAT_UNKNOWN Format = iota
	FORMAT_R32G32B32A32_FLOAT
	FORMAT_R32G32B32_FLOAT
	FORMAT_R32G32_FLOAT
	FORMAT_R32_FLOAT
	FORMAT_R32_UINT
	FORMAT_R8G8B8A8_UNORM
	FORMAT_D32_FLOAT
	/** @brief Block-compressed formats, stored as 4x4 texel blocks. */
	FORMAT_BC1_UNORM
	FORMAT_BC2_UNORM
	FORMAT_BC3_UNORM
)

var formatNames = map[Format]string{
	FORMAT_UNKNOWN:            "UNKNOWN",
	FORMAT_R32G32B32A32_FLOAT: "R32G32B32A32_FLOAT",
	FORMAT_R32G32B32_FLOAT:    "R32G32B32_FLOAT",
	FORMAT_R32G32_FLOAT:       "R32G32_FLOAT",
	FORMAT_R32_FLOAT:          "R32_FLOAT",
	FORMAT_R32_UINT:           "R32_UINT",
	FORMAT_R8G8B8A8_UNORM:     "R8G8B8A8_UNORM",
	FORMAT_D32_FLOAT:          "D32_FLOAT",
	FORMAT_BC1_UNORM:          "BC1_UNORM",
	FORMAT_BC2_UNORM:          "BC2_UNORM",
	FORMAT_BC3_UNORM:          "BC3_UNORM",
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return "INVALID"
}

/**
 * @brief Returns the size in bytes of one element of the format. For block
 * compressed formats this is the size of one 4x4 block.
 */
func (f Format) Size() uint32 {
	switch f {
	case FORMAT_R32G32B32A32_FLOAT:
		return 16
	case FORMAT_R32G32B32_FLOAT:
		return 12
	case FORMAT_R32G32_FLOAT:
		return 8
	case FORMAT_R32_FLOAT, FORMAT_R32_UINT, FORMAT_R8G8B8A8_UNORM, FORMAT_D32_FLOAT:
		return 4
	case FORMAT_BC1_UNORM:
		return 8
	case FORMAT_BC2_UNORM, FORMAT_BC3_UNORM:
		return 16
	default:
		return 0
	}
}

func (f Format) IsBlockCompressed() bool {
	return f == FORMAT_BC1_UNORM || f == FORMAT_BC2_UNORM || f == FORMAT_BC3_UNORM
}

func (f Format) IsDepth() bool {
	return f == FORMAT_D32_FLOAT
}
