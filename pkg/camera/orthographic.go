package camera

import (
	"fmt"
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// OrthographicCamera casts parallel rays from a rectangle of the given height.
// It only implements the scalar entry point.
type OrthographicCamera struct {
	Position   core.Vec3
	Direction  core.Vec3
	Up         core.Vec3
	NearClip   float64
	Height     float64
	Aspect     float64
	ImageStart core.Vec2
	ImageEnd   core.Vec2

	dir   core.Vec3
	org00 core.Vec3
	du    core.Vec3
	dv    core.Vec3
}

// Commit reads position, direction, up, nearClip, height, aspect, imageStart and imageEnd
func (c *OrthographicCamera) Commit(p *params.Params) error {
	c.Position = p.Vec3("position", core.Vec3{})
	c.Direction = p.Vec3("direction", core.NewVec3(0, 0, 1))
	c.Up = p.Vec3("up", core.NewVec3(0, 1, 0))
	c.NearClip = p.Float("nearClip", 1e-6)
	c.Height = p.Float("height", 1)
	c.Aspect = p.Float("aspect", 1)
	c.ImageStart, c.ImageEnd = imageRegion(p)

	if c.Direction.LengthSquared() == 0 || c.Height <= 0 || c.Aspect <= 0 {
		return fmt.Errorf("orthographic camera height %f aspect %f: %w", c.Height, c.Aspect, core.ErrInvalidParameter)
	}

	c.dir = c.Direction.Normalize()
	du := c.dir.Cross(c.Up).Normalize()
	dv := du.Cross(c.dir)
	if du.IsZero() {
		return fmt.Errorf("orthographic camera up vector is parallel to direction: %w", core.ErrInvalidParameter)
	}
	du = du.Multiply(c.Height * c.Aspect)
	dv = dv.Multiply(c.Height)

	org00 := c.Position.Subtract(du.Multiply(0.5)).Subtract(dv.Multiply(0.5))
	c.org00 = org00.Add(du.Multiply(c.ImageStart.X)).Add(dv.Multiply(c.ImageStart.Y))
	c.du = du.Multiply(c.ImageEnd.X - c.ImageStart.X)
	c.dv = dv.Multiply(c.ImageEnd.Y - c.ImageStart.Y)
	return nil
}

// GetRay returns the parallel ray starting at screen position s.Screen
func (c *OrthographicCamera) GetRay(s Sample) core.Ray {
	org := c.org00.Add(c.du.Multiply(s.Screen.X)).Add(c.dv.Multiply(s.Screen.Y))
	return core.NewRaySegment(org, c.dir, c.NearClip, math.Inf(1))
}
