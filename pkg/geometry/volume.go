package geometry

import (
	"fmt"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// VoxelType is the element type of a structured volume
type VoxelType string

const (
	VoxelUChar  VoxelType = "uchar"
	VoxelFloat  VoxelType = "float"
	VoxelDouble VoxelType = "double"
)

// StructuredVolume is a regular grid of scalar voxels. Only commit-time validation
// is implemented; sampling and isosurface intersection report ErrNotImplemented.
type StructuredVolume struct {
	Dimensions   [3]int
	GridOrigin   core.Vec3
	GridSpacing  core.Vec3
	VoxelType    VoxelType
	SamplingRate float64
	IsoValues    []float64

	voxels *params.Data
}

// Commit reads dimensions, gridOrigin, gridSpacing, voxelType and the voxelData buffer
func (v *StructuredVolume) Commit(p *params.Params) error {
	dims := p.Vec3("dimensions", core.Vec3{})
	v.Dimensions = [3]int{int(dims.X), int(dims.Y), int(dims.Z)}
	v.GridOrigin = p.Vec3("gridOrigin", core.Vec3{})
	v.GridSpacing = p.Vec3("gridSpacing", core.NewVec3(1, 1, 1))
	v.VoxelType = VoxelType(p.String("voxelType", string(VoxelFloat)))
	v.SamplingRate = p.Float("samplingRate", 0.125)
	v.voxels = p.Data("voxelData")

	var want params.DataType
	switch v.VoxelType {
	case VoxelUChar:
		want = params.UChar
	case VoxelFloat:
		want = params.Float
	case VoxelDouble:
		want = params.Double
	default:
		return fmt.Errorf("structured volume voxel type %q: %w", v.VoxelType, core.ErrUnsupportedLayout)
	}

	for axis, d := range v.Dimensions {
		if d <= 0 {
			return fmt.Errorf("structured volume dimension %d is %d: %w", axis, d, core.ErrInvalidParameter)
		}
	}
	if v.voxels != nil {
		if v.voxels.Type != want {
			return fmt.Errorf("structured volume voxelData type %v for voxel type %q: %w", v.voxels.Type, v.VoxelType, core.ErrUnsupportedLayout)
		}
		if n := v.Dimensions[0] * v.Dimensions[1] * v.Dimensions[2]; v.voxels.Len() < n {
			return fmt.Errorf("structured volume: %d voxels for %d cells: %w", v.voxels.Len(), n, core.ErrInvalidParameter)
		}
	}
	return nil
}

// Bounds returns the world-space extent of the grid
func (v *StructuredVolume) Bounds() core.AABB {
	extent := core.NewVec3(
		float64(v.Dimensions[0]-1)*v.GridSpacing.X,
		float64(v.Dimensions[1]-1)*v.GridSpacing.Y,
		float64(v.Dimensions[2]-1)*v.GridSpacing.Z,
	)
	return core.AABB{Min: v.GridOrigin, Max: v.GridOrigin.Add(extent)}
}

// IntersectIsosurface is not supported
func (v *StructuredVolume) IntersectIsosurface(ray *core.Ray) error {
	return fmt.Errorf("structured volume isosurface intersection: %w", core.ErrNotImplemented)
}

// AdaptiveStep is not supported
func (v *StructuredVolume) AdaptiveStep(ray *core.Ray) (float64, error) {
	return 0, fmt.Errorf("structured volume adaptive stepping: %w", core.ErrNotImplemented)
}
