package tensor

// DataType represents runtime type information for buffer elements.
type DataType int

// Supported element types. Float32 is the training type; Uint8 and Bool
// carry binarized frames produced by binary modulation front ends.
const (
	Float32 DataType = iota
	Float64
	Uint8
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}
