// Package params is the host parameter store that committed objects read from.
package params

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
)

// Params is a key/value parameter set. Objects read it during Commit and never mutate it.
// It is not safe to mutate a Params concurrently with a Commit reading it.
type Params struct {
	values map[string]any
}

// New creates an empty parameter set
func New() *Params {
	return &Params{values: make(map[string]any)}
}

// Set stores a value and returns the receiver so calls can be chained
func (p *Params) Set(name string, value any) *Params {
	p.values[name] = value
	return p
}

// Clone returns a shallow copy; a nil receiver yields an empty set
func (p *Params) Clone() *Params {
	c := New()
	if p != nil {
		for k, v := range p.values {
			c.values[k] = v
		}
	}
	return c
}

// Merge copies every value of other into p, overwriting existing names
func (p *Params) Merge(other *Params) *Params {
	if other != nil {
		for k, v := range other.values {
			p.values[k] = v
		}
	}
	return p
}

// Has reports whether name was set
func (p *Params) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[name]
	return ok
}

func (p *Params) lookup(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

// Float returns a numeric parameter as float64, or def when missing or not numeric
func (p *Params) Float(name string, def float64) float64 {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	}
	return def
}

// Int returns an integer parameter, or def when missing or not an integer
func (p *Params) Int(name string, def int) int {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return def
}

// Bool returns a boolean parameter; integers are treated as C-style truth values
func (p *Params) Bool(name string, def bool) bool {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x != 0
	}
	return def
}

// String returns a string parameter
func (p *Params) String(name string, def string) string {
	if v, ok := p.lookup(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Vec3 returns a 3-vector parameter
func (p *Params) Vec3(name string, def core.Vec3) core.Vec3 {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case core.Vec3:
		return x
	case [3]float64:
		return core.NewVec3(x[0], x[1], x[2])
	case [3]float32:
		return core.NewVec3(float64(x[0]), float64(x[1]), float64(x[2]))
	}
	return def
}

// Vec2 returns a 2-vector parameter
func (p *Params) Vec2(name string, def core.Vec2) core.Vec2 {
	v, ok := p.lookup(name)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case core.Vec2:
		return x
	case [2]float64:
		return core.NewVec2(x[0], x[1])
	case [2]float32:
		return core.NewVec2(float64(x[0]), float64(x[1]))
	}
	return def
}

// Object returns an opaque object reference, or nil
func (p *Params) Object(name string) any {
	v, _ := p.lookup(name)
	return v
}

// Data returns a typed data buffer reference, or nil
func (p *Params) Data(name string) *Data {
	if v, ok := p.lookup(name); ok {
		if d, ok := v.(*Data); ok {
			return d
		}
	}
	return nil
}
