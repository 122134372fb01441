package camera

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// PerspectiveCamera is a pinhole camera with optional thin-lens depth of field
type PerspectiveCamera struct {
	Position       core.Vec3
	Direction      core.Vec3
	Up             core.Vec3
	NearClip       float64
	Fovy           float64 // Vertical field of view in degrees
	Aspect         float64 // Width over height
	ApertureRadius float64
	FocusDistance  float64
	ImageStart     core.Vec2
	ImageEnd       core.Vec2

	dir00          core.Vec3 // Direction to the (imageStart.x, imageStart.y) corner
	dirDu          core.Vec3 // Screen x step across the visible region
	dirDv          core.Vec3 // Screen y step across the visible region
	scaledAperture float64
}

// NewPerspectiveCamera creates a committed camera looking from position along direction
func NewPerspectiveCamera(position, direction, up core.Vec3, fovy, aspect float64) *PerspectiveCamera {
	c := &PerspectiveCamera{}
	// Commit cannot fail for a well-formed direction and up vector
	_ = c.Commit(params.New().
		Set("position", position).
		Set("direction", direction).
		Set("up", up).
		Set("fovy", fovy).
		Set("aspect", aspect))
	return c
}

// Commit reads position, direction, up, nearClip, fovy, aspect, apertureRadius,
// focusDistance, imageStart and imageEnd and precomputes the screen basis
func (c *PerspectiveCamera) Commit(p *params.Params) error {
	c.Position = p.Vec3("position", core.Vec3{})
	c.Direction = p.Vec3("direction", core.NewVec3(0, 0, 1))
	c.Up = p.Vec3("up", core.NewVec3(0, 1, 0))
	c.NearClip = p.Float("nearClip", 1e-6)
	c.Fovy = p.Float("fovy", 60)
	c.Aspect = p.Float("aspect", 1)
	c.ApertureRadius = p.Float("apertureRadius", 0)
	c.FocusDistance = p.Float("focusDistance", 1)
	c.ImageStart, c.ImageEnd = imageRegion(p)

	if c.Direction.LengthSquared() == 0 {
		return fmt.Errorf("perspective camera direction is zero: %w", core.ErrInvalidParameter)
	}
	if c.Aspect <= 0 || c.Fovy <= 0 || c.Fovy >= 180 {
		return fmt.Errorf("perspective camera fovy %f aspect %f: %w", c.Fovy, c.Aspect, core.ErrInvalidParameter)
	}

	dir := c.Direction.Normalize()
	du := dir.Cross(c.Up).Normalize()
	dv := du.Cross(dir)
	if du.IsZero() {
		return fmt.Errorf("perspective camera up vector is parallel to direction: %w", core.ErrInvalidParameter)
	}

	imgPlaneY := 2.0 * math.Tan(c.Fovy*math.Pi/360)
	imgPlaneX := imgPlaneY * c.Aspect
	du = du.Multiply(imgPlaneX)
	dv = dv.Multiply(imgPlaneY)

	dir00 := dir.Subtract(du.Multiply(0.5)).Subtract(dv.Multiply(0.5))

	if c.ApertureRadius > 0 {
		if c.FocusDistance <= 0 {
			return fmt.Errorf("perspective camera focus distance %f: %w", c.FocusDistance, core.ErrInvalidParameter)
		}
		c.scaledAperture = c.ApertureRadius / (imgPlaneX * c.FocusDistance)
		dir00 = dir00.Multiply(c.FocusDistance)
		du = du.Multiply(c.FocusDistance)
		dv = dv.Multiply(c.FocusDistance)
	} else {
		c.scaledAperture = 0
	}

	c.dir00 = dir00.Add(du.Multiply(c.ImageStart.X)).Add(dv.Multiply(c.ImageStart.Y))
	c.dirDu = du.Multiply(c.ImageEnd.X - c.ImageStart.X)
	c.dirDv = dv.Multiply(c.ImageEnd.Y - c.ImageStart.Y)

	core.Logger().Debug("perspective camera committed",
		"position", c.Position, "direction", dir, "fovy", c.Fovy, "aspect", c.Aspect,
		"depthOfField", c.scaledAperture > 0)
	return nil
}

// GetRay returns the ray through screen position s.Screen
func (c *PerspectiveCamera) GetRay(s Sample) core.Ray {
	org := c.Position
	dir := c.dir00.Add(c.dirDu.Multiply(s.Screen.X)).Add(c.dirDv.Multiply(s.Screen.Y))

	if c.scaledAperture > 0 {
		lens := core.SamplePointInUnitDisk(s.Lens).Multiply(c.scaledAperture)
		offset := c.dirDu.Multiply(lens.X).Add(c.dirDv.Multiply(lens.Y))
		org = org.Add(offset)
		dir = dir.Subtract(offset)
	}

	return core.NewRaySegment(org, dir.Normalize(), c.NearClip, math.Inf(1))
}

// GetRayLanes generates the rays of every lane in mask; other lanes are disabled
func (c *PerspectiveCamera) GetRayLanes(s *SampleLanes, mask core.Mask, rays *core.RayLanes) {
	for i := 0; i < core.LaneWidth; i++ {
		ray := c.GetRay(Sample{Screen: s.Screen.Get(i), Lens: s.Lens.Get(i)})
		rays.Set(i, ray)
	}
	rays.Disable(mask)
}
