package metadata

/** @brief How the input assembler groups indices into primitives. */
type PrimitiveTopology int

const (
	TOPOLOGY_UNDEFINED PrimitiveTopology = iota
	TOPOLOGY_POINT_LIST
	TOPOLOGY_TRIANGLE_LIST
	TOPOLOGY_3_CONTROL_POINT_PATCH_LIST
	TOPOLOGY_4_CONTROL_POINT_PATCH_LIST
)

func (t PrimitiveTopology) String() string {
	switch t {
	case TOPOLOGY_POINT_LIST:
		return "point-list"
	case TOPOLOGY_TRIANGLE_LIST:
		return "triangle-list"
	case TOPOLOGY_3_CONTROL_POINT_PATCH_LIST:
		return "patch-list-3"
	case TOPOLOGY_4_CONTROL_POINT_PATCH_LIST:
		return "patch-list-4"
	default:
		return "undefined"
	}
}

// ControlPoints returns the patch size, or 0 for non-patch topologies.
func (t PrimitiveTopology) ControlPoints() uint32 {
	switch t {
	case TOPOLOGY_3_CONTROL_POINT_PATCH_LIST:
		return 3
	case TOPOLOGY_4_CONTROL_POINT_PATCH_LIST:
		return 4
	default:
		return 0
	}
}

func (t PrimitiveTopology) IsPatch() bool {
	return t.ControlPoints() > 0
}

// IndicesPerPrimitive returns how many indices form one primitive.
func (t PrimitiveTopology) IndicesPerPrimitive() uint32 {
	switch t {
	case TOPOLOGY_POINT_LIST:
		return 1
	case TOPOLOGY_TRIANGLE_LIST:
		return 3
	default:
		return t.ControlPoints()
	}
}
