package core

// The functions below route a query to the widest entry point the intersector offers
// and fall back to per-ray loops otherwise. Nil rays in a stream are skipped.

// IntersectLanes intersects the lanes of mask
func IntersectLanes(i Intersector, rays *RayLanes, mask Mask) {
	if li, ok := i.(LaneIntersector); ok {
		li.IntersectLanes(rays, mask)
		return
	}
	for l := 0; l < LaneWidth; l++ {
		if !mask[l] {
			continue
		}
		ray := rays.Get(l)
		i.Intersect(&ray)
		rays.Set(l, ray)
	}
}

// OccludedLanes returns the occluded lanes of mask
func OccludedLanes(i Intersector, rays *RayLanes, mask Mask) Mask {
	if li, ok := i.(LaneIntersector); ok {
		return li.OccludedLanes(rays, mask)
	}
	var occluded Mask
	for l := 0; l < LaneWidth; l++ {
		if mask[l] {
			ray := rays.Get(l)
			occluded[l] = i.Occluded(&ray)
		}
	}
	return occluded
}

// IntersectStream intersects a batch of rays
func IntersectStream(i Intersector, rays []*Ray) {
	if si, ok := i.(StreamIntersector); ok {
		si.IntersectStream(rays)
		return
	}
	for _, ray := range rays {
		if ray != nil {
			i.Intersect(ray)
		}
	}
}

// OccludedStream fills occluded with one result per ray
func OccludedStream(i Intersector, rays []*Ray, occluded []bool) {
	if si, ok := i.(StreamIntersector); ok {
		si.OccludedStream(rays, occluded)
		return
	}
	for n, ray := range rays {
		occluded[n] = ray != nil && i.Occluded(ray)
	}
}

// IntersectLaneStream intersects a batch of lane packets
func IntersectLaneStream(i Intersector, rays []RayLanes, masks []Mask) {
	if lsi, ok := i.(LaneStreamIntersector); ok {
		lsi.IntersectLaneStream(rays, masks)
		return
	}
	for n := range rays {
		IntersectLanes(i, &rays[n], masks[n])
	}
}

// OccludedLaneStream returns one occlusion mask per packet
func OccludedLaneStream(i Intersector, rays []RayLanes, masks []Mask) []Mask {
	if lsi, ok := i.(LaneStreamIntersector); ok {
		return lsi.OccludedLaneStream(rays, masks)
	}
	out := make([]Mask, len(rays))
	for n := range rays {
		out[n] = OccludedLanes(i, &rays[n], masks[n])
	}
	return out
}

// MissingCapabilities names the wide entry points an intersector lacks
func MissingCapabilities(i Intersector) []string {
	var missing []string
	if _, ok := i.(LaneIntersector); !ok {
		missing = append(missing, "lanes")
	}
	if _, ok := i.(StreamIntersector); !ok {
		missing = append(missing, "stream")
	}
	if _, ok := i.(LaneStreamIntersector); !ok {
		missing = append(missing, "lane-stream")
	}
	return missing
}
