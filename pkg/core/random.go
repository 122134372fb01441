package core

// RNG is a small TEA-seeded linear congruential generator.
// It is a value type owned by one sample; it is not safe for concurrent use.
type RNG struct {
	state uint32
}

// teaRounds is the number of TEA rounds used to decorrelate seeds
const teaRounds = 8

// NewRNG seeds a generator from two integers, typically a pixel index and a sample index.
// Consecutive seeds produce uncorrelated streams because they are scrambled with TEA first.
func NewRNG(seed0, seed1 uint32) RNG {
	v0, _ := Tea(seed0, seed1, teaRounds)
	return RNG{state: v0}
}

// Tea runs the tiny encryption algorithm over (v0, v1) for the given rounds
func Tea(v0, v1 uint32, rounds int) (uint32, uint32) {
	var sum uint32
	for i := 0; i < rounds; i++ {
		sum += 0x9e3779b9
		v0 += ((v1 << 4) + 0xa341316c) ^ (v1 + sum) ^ ((v1 >> 5) + 0xc8013ea4)
		v1 += ((v0 << 4) + 0xad90777d) ^ (v0 + sum) ^ ((v0 >> 5) + 0x7e95761e)
	}
	return v0, v1
}

// NextUint32 advances the LCG and returns its state
func (r *RNG) NextUint32() uint32 {
	r.state = 1664525*r.state + 1013904223
	return r.state
}

// Float64 returns a value in [0, 1) built from the low 24 bits of the state
func (r *RNG) Float64() float64 {
	return float64(r.NextUint32()&0xFFFFFF) / float64(0x1000000)
}

// Get1D returns one uniform number
func (r *RNG) Get1D() float64 {
	return r.Float64()
}

// Get2D returns two uniform numbers, x drawn first
func (r *RNG) Get2D() Vec2 {
	x := r.Float64()
	y := r.Float64()
	return Vec2{x, y}
}

// Get3D returns three uniform numbers
func (r *RNG) Get3D() Vec3 {
	x := r.Float64()
	y := r.Float64()
	z := r.Float64()
	return Vec3{x, y, z}
}

// RadicalInverse returns the base-b radical inverse of index (Halton sequence element)
func RadicalInverse(base, index int) float64 {
	invBase := 1.0 / float64(base)
	f := invBase
	result := 0.0
	for index > 0 {
		result += float64(index%base) * f
		index /= base
		f *= invBase
	}
	return result
}

// Halton2 returns the base-2 Halton value for index
func Halton2(index int) float64 { return RadicalInverse(2, index) }

// Halton3 returns the base-3 Halton value for index
func Halton3(index int) float64 { return RadicalInverse(3, index) }

// Halton5 returns the base-5 Halton value for index
func Halton5(index int) float64 { return RadicalInverse(5, index) }

// Fract returns x - floor(x) for non-negative x
func Fract(x float64) float64 {
	return x - float64(int64(x))
}
