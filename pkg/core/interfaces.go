package core

// Intersector finds the closest hit along a single ray.
// Intersect updates ray.T, Ng, U, V and the IDs in place on a closer hit.
type Intersector interface {
	Intersect(ray *Ray)
	Occluded(ray *Ray) bool
}

// LaneIntersector traces a fixed-width packet of rays under an activity mask.
// Lanes outside mask are left untouched.
type LaneIntersector interface {
	IntersectLanes(rays *RayLanes, mask Mask)
	OccludedLanes(rays *RayLanes, mask Mask) Mask
}

// StreamIntersector traces a batch of independent rays.
// OccludedStream writes one result per ray into occluded; inactive rays report false.
type StreamIntersector interface {
	IntersectStream(rays []*Ray)
	OccludedStream(rays []*Ray, occluded []bool)
}

// LaneStreamIntersector traces a batch of lane packets, one mask per packet.
type LaneStreamIntersector interface {
	IntersectLaneStream(rays []RayLanes, masks []Mask)
	OccludedLaneStream(rays []RayLanes, masks []Mask) []Mask
}
