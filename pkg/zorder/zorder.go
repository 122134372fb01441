// Package zorder builds Morton-ordered pixel traversals for square tiles.
package zorder

import "fmt"

// Partition spreads the low 16 bits of x into the even bit positions of the result
func Partition(x uint32) uint32 {
	x &= 0x0000ffff
	x = (x ^ (x << 8)) & 0x00ff00ff
	x = (x ^ (x << 4)) & 0x0f0f0f0f
	x = (x ^ (x << 2)) & 0x33333333
	x = (x ^ (x << 1)) & 0x55555555
	return x
}

// compact is the inverse of Partition
func compact(x uint32) uint32 {
	x &= 0x55555555
	x = (x ^ (x >> 1)) & 0x33333333
	x = (x ^ (x >> 2)) & 0x0f0f0f0f
	x = (x ^ (x >> 4)) & 0x00ff00ff
	x = (x ^ (x >> 8)) & 0x0000ffff
	return x
}

// Interleave returns the Morton code of (x, y); x occupies the even bits
func Interleave(x, y uint32) uint32 {
	return Partition(x) | (Partition(y) << 1)
}

// Deinterleave recovers (x, y) from a Morton code
func Deinterleave(z uint32) (x, y uint32) {
	return compact(z), compact(z >> 1)
}

// Table maps a linear index in [0, Size²) to tile-local pixel coordinates in Morton order.
// A Table is immutable after NewTable and safe to share between goroutines.
type Table struct {
	size int
	xs   []uint16
	ys   []uint16
}

// NewTable builds the traversal for a size×size tile; size must be a power of two no larger than 65536
func NewTable(size int) (*Table, error) {
	if size <= 0 || size&(size-1) != 0 || size > 1<<16 {
		return nil, fmt.Errorf("zorder: tile size %d must be a power of two in [1, 65536]", size)
	}

	n := size * size
	t := &Table{
		size: size,
		xs:   make([]uint16, n),
		ys:   make([]uint16, n),
	}
	for i := 0; i < n; i++ {
		x, y := Deinterleave(uint32(i))
		t.xs[i] = uint16(x)
		t.ys[i] = uint16(y)
	}
	return t, nil
}

// Size returns the tile edge length
func (t *Table) Size() int { return t.size }

// Len returns the number of pixels in the tile
func (t *Table) Len() int { return len(t.xs) }

// At returns the tile-local coordinates of the i-th pixel in traversal order
func (t *Table) At(i int) (x, y int) {
	return int(t.xs[i]), int(t.ys[i])
}

// Offset returns the row-major tile buffer offset of the i-th pixel in traversal order
func (t *Table) Offset(i int) int {
	return int(t.ys[i])*t.size + int(t.xs[i])
}
