package params

import "fmt"

// DataType identifies the element layout of a Data buffer
type DataType int

const (
	UChar DataType = iota
	Int
	Float
	Double
	Vec2f
	Vec3f
	Vec3fa // three floats padded to four
	Vec4f
	Vec3i
	Vec4i
)

var dataTypeNames = map[DataType]string{
	UChar:  "uchar",
	Int:    "int",
	Float:  "float",
	Double: "double",
	Vec2f:  "vec2f",
	Vec3f:  "vec3f",
	Vec3fa: "vec3fa",
	Vec4f:  "vec4f",
	Vec3i:  "vec3i",
	Vec4i:  "vec4i",
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Components returns the number of scalars stored per element
func (t DataType) Components() int {
	switch t {
	case Vec2f:
		return 2
	case Vec3f, Vec3i:
		return 3
	case Vec3fa, Vec4f, Vec4i:
		return 4
	default:
		return 1
	}
}

// Data is a typed, flat buffer shared by reference between the host and committed objects.
// Exactly one of the backing slices is populated, chosen by Type.
type Data struct {
	Type    DataType
	Floats  []float32 // Float, Vec2f, Vec3f, Vec3fa, Vec4f
	Ints    []int32   // Int, Vec3i, Vec4i
	Bytes   []uint8   // UChar
	Doubles []float64 // Double
}

// NewFloatData wraps a float buffer of the given vector layout
func NewFloatData(t DataType, values []float32) *Data {
	return &Data{Type: t, Floats: values}
}

// NewIntData wraps an integer buffer of the given vector layout
func NewIntData(t DataType, values []int32) *Data {
	return &Data{Type: t, Ints: values}
}

// NewByteData wraps a uchar buffer
func NewByteData(values []uint8) *Data {
	return &Data{Type: UChar, Bytes: values}
}

// NewDoubleData wraps a double buffer
func NewDoubleData(values []float64) *Data {
	return &Data{Type: Double, Doubles: values}
}

// Len returns the number of elements, not scalars
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	var n int
	switch d.Type {
	case UChar:
		n = len(d.Bytes)
	case Double:
		n = len(d.Doubles)
	case Int, Vec3i, Vec4i:
		n = len(d.Ints)
	default:
		n = len(d.Floats)
	}
	return n / d.Type.Components()
}
