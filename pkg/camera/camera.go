// Package camera generates primary rays from normalized screen coordinates.
package camera

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// Sample is a normalized screen position in [0,1]² plus a lens position in [0,1]²
type Sample struct {
	Screen core.Vec2
	Lens   core.Vec2
}

// SampleLanes is the lane-parallel form of Sample
type SampleLanes struct {
	Screen core.Vec2Lanes
	Lens   core.Vec2Lanes
}

// Camera turns screen samples into rays. GetRay is pure and safe for concurrent use after Commit.
type Camera interface {
	Commit(p *params.Params) error
	GetRay(s Sample) core.Ray
}

// LaneCamera can generate a full packet of rays at once
type LaneCamera interface {
	Camera
	GetRayLanes(s *SampleLanes, mask core.Mask, rays *core.RayLanes)
}

// imageRegion reads imageStart/imageEnd and clamps them so start <= end componentwise
func imageRegion(p *params.Params) (start, end core.Vec2) {
	start = p.Vec2("imageStart", core.NewVec2(0, 0))
	end = p.Vec2("imageEnd", core.NewVec2(1, 1))

	clamp01 := func(x float64) float64 { return min(max(x, 0), 1) }
	start = core.NewVec2(clamp01(start.X), clamp01(start.Y))
	end = core.NewVec2(clamp01(end.X), clamp01(end.Y))
	end = core.NewVec2(max(start.X, end.X), max(start.Y, end.Y))
	return start, end
}
