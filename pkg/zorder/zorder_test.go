package zorder

import "testing"

func TestInterleave_RoundTrip(t *testing.T) {
	const size = 64
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			gx, gy := Deinterleave(Interleave(x, y))
			if gx != x || gy != y {
				t.Fatalf("Deinterleave(Interleave(%d, %d)) = (%d, %d)", x, y, gx, gy)
			}
		}
	}
}

func TestInterleave_KnownValues(t *testing.T) {
	tests := []struct {
		x, y     uint32
		expected uint32
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 0, 4},
		{3, 3, 15},
		{0xffff, 0, 0x55555555},
	}

	for _, tt := range tests {
		if got := Interleave(tt.x, tt.y); got != tt.expected {
			t.Errorf("Interleave(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestNewTable_VisitsEveryPixelOnce(t *testing.T) {
	for _, size := range []int{1, 2, 8, 64} {
		table, err := NewTable(size)
		if err != nil {
			t.Fatalf("NewTable(%d) error: %v", size, err)
		}
		seen := make([]bool, size*size)
		for i := 0; i < table.Len(); i++ {
			off := table.Offset(i)
			if seen[off] {
				t.Fatalf("size %d: offset %d visited twice", size, off)
			}
			seen[off] = true
		}
	}
}

func TestNewTable_FirstQuadrantOrder(t *testing.T) {
	table, err := NewTable(4)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0}}
	for i, w := range want {
		x, y := table.At(i)
		if x != w[0] || y != w[1] {
			t.Errorf("At(%d) = (%d, %d), want (%d, %d)", i, x, y, w[0], w[1])
		}
	}
}

func TestNewTable_RejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -4, 3, 48} {
		if _, err := NewTable(size); err == nil {
			t.Errorf("NewTable(%d) expected error", size)
		}
	}
}
