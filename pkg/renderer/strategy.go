package renderer

import (
	"fmt"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// StreamSize is the number of rays traced per batched intersection call
const StreamSize = 64

// Strategy selects how the tile pipeline batches its work. Every strategy runs
// the same algorithm and produces identical tiles.
type Strategy struct {
	Name      string
	LaneWidth int  // Rays per packet: 1 for scalar rays, core.LaneWidth for lane packets
	BatchSize int  // Packets per intersection call
	Parallel  bool // Run generation and shading of a batch on the batch executor
}

var (
	Scalar      = Strategy{Name: "scalar", LaneWidth: 1, BatchSize: 1}
	Lanes       = Strategy{Name: "lanes", LaneWidth: core.LaneWidth, BatchSize: 1}
	Stream      = Strategy{Name: "stream", LaneWidth: 1, BatchSize: StreamSize}
	StreamLanes = Strategy{Name: "stream-lanes", LaneWidth: core.LaneWidth, BatchSize: StreamSize / core.LaneWidth}
	TaskBatch   = Strategy{Name: "task-batch", LaneWidth: 1, BatchSize: StreamSize, Parallel: true}
)

// Strategies lists every built-in strategy
func Strategies() []Strategy {
	return []Strategy{Scalar, Lanes, Stream, StreamLanes, TaskBatch}
}

// ParseStrategy looks up a strategy by name
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	names := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		names = append(names, s.Name)
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q (available: %s): %w",
		name, strings.Join(names, ", "), core.ErrInvalidParameter)
}

func (s Strategy) String() string {
	return s.Name
}

// usesLanes reports whether rays travel in lane packets
func (s Strategy) usesLanes() bool {
	return s.LaneWidth > 1
}

// streamed reports whether several packets share one intersection call
func (s Strategy) streamed() bool {
	return s.BatchSize > 1
}

func (s Strategy) validate() error {
	if s.LaneWidth != 1 && s.LaneWidth != core.LaneWidth {
		return fmt.Errorf("strategy %q lane width %d: %w", s.Name, s.LaneWidth, core.ErrInvalidParameter)
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("strategy %q batch size %d: %w", s.Name, s.BatchSize, core.ErrInvalidParameter)
	}
	if s.Parallel && s.usesLanes() {
		return fmt.Errorf("strategy %q: parallel batches run on scalar rays: %w", s.Name, core.ErrInvalidParameter)
	}
	return nil
}
