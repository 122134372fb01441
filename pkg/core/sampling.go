package core

import "math"

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere around normal
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	return SampleCosinePowerHemisphere(normal, 1, sample)
}

// SampleCosinePowerHemisphere draws a direction around normal with density proportional to cos^exponent
func SampleCosinePowerHemisphere(normal Vec3, exponent float64, sample Vec2) Vec3 {
	local := CosinePowerHemisphereLocal(exponent, sample)
	t, b := Frame(normal)
	return t.Multiply(local.X).Add(b.Multiply(local.Y)).Add(normal.Multiply(local.Z))
}

// CosinePowerHemisphereLocal draws a cos^exponent-weighted direction around +Z
func CosinePowerHemisphereLocal(exponent float64, sample Vec2) Vec3 {
	phi := 2.0 * math.Pi * sample.X
	var cosTheta float64
	if exponent == 1 {
		cosTheta = math.Sqrt(sample.Y)
	} else {
		cosTheta = math.Pow(sample.Y, 1.0/(exponent+1.0))
	}
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	return NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)
}

// CosineHemispherePDF returns the density of a cosine-weighted hemisphere sample
func CosineHemispherePDF(cosTheta float64) float64 {
	return cosTheta / math.Pi
}

// SampleCone samples a direction uniformly within a cone
func SampleCone(direction Vec3, cosTotalWidth float64, sample Vec2) Vec3 {
	u, v := Frame(direction)

	cosTheta := 1.0 - sample.X*(1.0-cosTotalWidth)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y

	x := sinTheta * math.Cos(phi)
	y := sinTheta * math.Sin(phi)
	return u.Multiply(x).Add(v.Multiply(y)).Add(direction.Multiply(cosTheta))
}

// UniformConePDF returns the density of SampleCone
func UniformConePDF(cosAngle float64) float64 {
	return 1.0 / (2.0 * math.Pi * (1.0 - cosAngle))
}

// SamplePointInUnitDisk generates a point in a unit disk using concentric mapping
// This avoids rejection sampling by mapping a square uniformly to a disk
func SamplePointInUnitDisk(sample Vec2) Vec2 {
	offset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if offset.X == 0 && offset.Y == 0 {
		return Vec2{}
	}

	var theta, r float64
	if math.Abs(offset.X) > math.Abs(offset.Y) {
		r = offset.X
		theta = math.Pi / 4 * (offset.Y / offset.X)
	} else {
		r = offset.Y
		theta = math.Pi/2 - math.Pi/4*(offset.X/offset.Y)
	}

	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}
