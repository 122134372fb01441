package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/params"
)

// TriangleMesh is an indexed triangle mesh with optional per-vertex normals, colors and
// texture coordinates. Buffers are read from params on Commit and validated by Finalize.
type TriangleMesh struct {
	Material  *material.OBJMaterial   // Default material
	Materials []*material.OBJMaterial // Indexed by per-primitive material ID
	Transform *mgl64.Mat4             // Optional object-to-world transform applied at Finalize

	vertexData   *params.Data
	indexData    *params.Data
	normalData   *params.Data
	colorData    *params.Data
	texcoordData *params.Data
	primMatData  *params.Data

	vertices        []core.Vec3
	indices         [][3]int32
	normals         []core.Vec3
	colors          []core.Vec3
	texcoords       []core.Vec2
	primMaterialIDs []int32
	bounds          core.AABB
	finalized       bool
}

// TriangleMeshOptions contains optional attributes for NewTriangleMesh
type TriangleMeshOptions struct {
	Normals   []core.Vec3 // Per-vertex shading normals
	Colors    []core.Vec3 // Per-vertex colors
	TexCoords []core.Vec2 // Per-vertex texture coordinates
	Transform *mgl64.Mat4 // Optional transform applied to vertices and normals
}

// NewTriangleMesh builds and finalizes a mesh directly from Go slices.
// faces holds three vertex indices per triangle.
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat *material.OBJMaterial, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("triangle mesh: %d face indices is not a multiple of 3: %w", len(faces), core.ErrInvalidParameter)
	}

	indices := make([]int32, len(faces))
	for i, f := range faces {
		indices[i] = int32(f)
	}

	mesh := &TriangleMesh{
		Material:   mat,
		vertexData: params.NewFloatData(params.Vec3f, flattenVec3(vertices)),
		indexData:  params.NewIntData(params.Vec3i, indices),
	}
	if options != nil {
		if options.Normals != nil {
			mesh.normalData = params.NewFloatData(params.Vec3f, flattenVec3(options.Normals))
		}
		if options.Colors != nil {
			mesh.colorData = params.NewFloatData(params.Vec3f, flattenVec3(options.Colors))
		}
		if options.TexCoords != nil {
			mesh.texcoordData = params.NewFloatData(params.Vec2f, flattenVec2(options.TexCoords))
		}
		mesh.Transform = options.Transform
	}

	if err := mesh.Finalize(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// Commit reads the mesh buffers: vertex, index, vertex.normal, vertex.color,
// vertex.texcoord, prim.materialID, plus material objects and an optional transform.
func (m *TriangleMesh) Commit(p *params.Params) error {
	m.vertexData = p.Data("vertex")
	m.indexData = p.Data("index")
	m.normalData = p.Data("vertex.normal")
	m.colorData = p.Data("vertex.color")
	m.texcoordData = p.Data("vertex.texcoord")
	m.primMatData = p.Data("prim.materialID")

	if mat, ok := p.Object("material").(*material.OBJMaterial); ok {
		m.Material = mat
	}
	if mats, ok := p.Object("materialList").([]*material.OBJMaterial); ok {
		m.Materials = mats
	}
	if xf, ok := p.Object("transform").(mgl64.Mat4); ok {
		m.Transform = &xf
	}

	return m.Finalize()
}

// Finalize converts the committed buffers into the internal layout
func (m *TriangleMesh) Finalize() error {
	if m.vertexData == nil || m.indexData == nil {
		return fmt.Errorf("triangle mesh: vertex and index buffers are required: %w", core.ErrInvalidParameter)
	}

	vertices, err := readVec3(m.vertexData, "vertex")
	if err != nil {
		return err
	}
	indices, err := readIndices(m.indexData)
	if err != nil {
		return err
	}
	for i, tri := range indices {
		for _, idx := range tri {
			if idx < 0 || int(idx) >= len(vertices) {
				return fmt.Errorf("triangle mesh: triangle %d index %d out of range [0, %d): %w",
					i, idx, len(vertices), core.ErrInvalidParameter)
			}
		}
	}

	var normals, colors []core.Vec3
	var texcoords []core.Vec2
	if m.normalData != nil {
		if normals, err = readVec3(m.normalData, "vertex.normal"); err != nil {
			return err
		}
		if len(normals) < len(vertices) {
			return fmt.Errorf("triangle mesh: %d normals for %d vertices: %w", len(normals), len(vertices), core.ErrInvalidParameter)
		}
	}
	if m.colorData != nil {
		if colors, err = readColors(m.colorData); err != nil {
			return err
		}
		if len(colors) < len(vertices) {
			return fmt.Errorf("triangle mesh: %d colors for %d vertices: %w", len(colors), len(vertices), core.ErrInvalidParameter)
		}
	}
	if m.texcoordData != nil {
		if texcoords, err = readVec2(m.texcoordData, "vertex.texcoord"); err != nil {
			return err
		}
		if len(texcoords) < len(vertices) {
			return fmt.Errorf("triangle mesh: %d texcoords for %d vertices: %w", len(texcoords), len(vertices), core.ErrInvalidParameter)
		}
	}
	var primMaterialIDs []int32
	if m.primMatData != nil {
		if m.primMatData.Type != params.Int {
			return fmt.Errorf("triangle mesh prim.materialID type %v: %w", m.primMatData.Type, core.ErrUnsupportedLayout)
		}
		primMaterialIDs = m.primMatData.Ints
	}

	if m.Transform != nil {
		applyTransform(*m.Transform, vertices, normals)
	}

	bounds := core.EmptyAABB()
	for _, tri := range indices {
		bounds = bounds.Extend(vertices[tri[0]]).Extend(vertices[tri[1]]).Extend(vertices[tri[2]])
	}

	m.vertices = vertices
	m.indices = indices
	m.normals = normals
	m.colors = colors
	m.texcoords = texcoords
	m.primMaterialIDs = primMaterialIDs
	m.bounds = bounds
	m.finalized = true

	core.Logger().Debug("triangle mesh finalized",
		"triangles", len(indices), "vertices", len(vertices),
		"normals", normals != nil, "colors", colors != nil, "texcoords", texcoords != nil)
	return nil
}

// applyTransform moves vertices by xf and normals by its inverse transpose
func applyTransform(xf mgl64.Mat4, vertices, normals []core.Vec3) {
	for i, v := range vertices {
		p := mgl64.TransformCoordinate(mgl64.Vec3{v.X, v.Y, v.Z}, xf)
		vertices[i] = core.NewVec3(p[0], p[1], p[2])
	}
	if normals == nil {
		return
	}
	normalXf := xf.Inv().Transpose()
	for i, n := range normals {
		tn := mgl64.TransformNormal(mgl64.Vec3{n.X, n.Y, n.Z}, normalXf)
		normals[i] = core.NewVec3(tn[0], tn[1], tn[2])
	}
}

// Bounds returns the bounding box of all triangles
func (m *TriangleMesh) Bounds() core.AABB {
	return m.bounds
}

// PrimitiveCount returns the number of triangles
func (m *TriangleMesh) PrimitiveCount() int {
	return len(m.indices)
}

// GetTriangleCount returns the number of triangles in this mesh
func (m *TriangleMesh) GetTriangleCount() int {
	return len(m.indices)
}

// PrimitiveBounds returns the bounding box of one triangle
func (m *TriangleMesh) PrimitiveBounds(primID int) core.AABB {
	tri := m.indices[primID]
	return core.NewAABBFromPoints(m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]])
}

// Vertex returns vertex i after finalization
func (m *TriangleMesh) Vertex(i int) core.Vec3 {
	return m.vertices[i]
}

// hitTriangle runs Möller-Trumbore with edges taken from the third vertex,
// so the hit point is u*v0 + v*v1 + (1-u-v)*v2.
func (m *TriangleMesh) hitTriangle(primID int, ray *core.Ray) (t, u, v float64, ng core.Vec3, ok bool) {
	const epsilon = 1e-12

	tri := m.indices[primID]
	v0 := m.vertices[tri[0]]
	v1 := m.vertices[tri[1]]
	v2 := m.vertices[tri[2]]

	e1 := v0.Subtract(v2)
	e2 := v1.Subtract(v2)

	h := ray.Direction.Cross(e2)
	a := e1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, core.Vec3{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v2)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, core.Vec3{}, false
	}

	q := s.Cross(e1)
	v = f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, core.Vec3{}, false
	}

	t = f * e2.Dot(q)
	if t < ray.T0 || t > ray.T {
		return 0, 0, 0, core.Vec3{}, false
	}

	return t, u, v, e1.Cross(e2), true
}

// IntersectPrimitive records a closer hit on ray
func (m *TriangleMesh) IntersectPrimitive(primID int, geomID int32, ray *core.Ray) bool {
	t, u, v, ng, ok := m.hitTriangle(primID, ray)
	if !ok || (ray.Hit() && t >= ray.T) {
		return false
	}
	ray.T = t
	ray.U = u
	ray.V = v
	ray.Ng = ng
	ray.GeomID = geomID
	ray.PrimID = int32(primID)
	return true
}

// OccludedPrimitive reports any hit within the ray interval
func (m *TriangleMesh) OccludedPrimitive(primID int, ray *core.Ray) bool {
	_, _, _, _, ok := m.hitTriangle(primID, ray)
	return ok
}

func interpolate3(a0, a1, a2 core.Vec3, u, v float64) core.Vec3 {
	return a0.Multiply(u).Add(a1.Multiply(v)).Add(a2.Multiply(1 - u - v))
}

func interpolate2(a0, a1, a2 core.Vec2, u, v float64) core.Vec2 {
	return a0.Multiply(u).Add(a1.Multiply(v)).Add(a2.Multiply(1 - u - v))
}

// PostIntersect interpolates the per-vertex attributes at the ray's barycentrics
func (m *TriangleMesh) PostIntersect(dg *DifferentialGeometry, ray *core.Ray, flags Flags) {
	tri := m.indices[ray.PrimID]
	i0, i1, i2 := tri[0], tri[1], tri[2]
	u, v := ray.U, ray.V

	dg.Material = m.Material

	if flags&DGNs != 0 && m.normals != nil {
		dg.Ns = interpolate3(m.normals[i0], m.normals[i1], m.normals[i2], u, v)
	}

	if flags&DGColor != 0 && m.colors != nil {
		dg.Color = interpolate3(m.colors[i0], m.colors[i1], m.colors[i2], u, v)
	}

	if flags&DGTexCoord != 0 && m.texcoords != nil {
		dg.St = interpolate2(m.texcoords[i0], m.texcoords[i1], m.texcoords[i2], u, v)
	}

	if flags&DGTangents != 0 {
		m.tangents(dg, tri)
	}

	if m.primMaterialIDs != nil && int(ray.PrimID) < len(m.primMaterialIDs) {
		id := m.primMaterialIDs[ray.PrimID]
		if flags&DGMaterialID != 0 {
			dg.MaterialID = id
		}
		if id >= 0 && int(id) < len(m.Materials) && m.Materials[id] != nil {
			dg.Material = m.Materials[id]
		}
	}
}

// tangents derives dPds/dPdt from the texture Jacobian, falling back to a frame around Ng
func (m *TriangleMesh) tangents(dg *DifferentialGeometry, tri [3]int32) {
	if m.texcoords != nil {
		dst01 := m.texcoords[tri[0]].Subtract(m.texcoords[tri[2]])
		dst02 := m.texcoords[tri[1]].Subtract(m.texcoords[tri[2]])
		dp01 := m.vertices[tri[0]].Subtract(m.vertices[tri[2]])
		dp02 := m.vertices[tri[1]].Subtract(m.vertices[tri[2]])

		det := dst01.X*dst02.Y - dst01.Y*dst02.X
		if det != 0 {
			invDet := 1.0 / det
			dg.DPds = dp01.Multiply(dst02.Y).Subtract(dp02.Multiply(dst01.Y)).Multiply(invDet)
			dg.DPdt = dp02.Multiply(dst01.X).Subtract(dp01.Multiply(dst02.X)).Multiply(invDet)
			return
		}
	}
	dg.DPds, dg.DPdt = core.Frame(dg.Ng.Normalize())
}

func flattenVec3(vs []core.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, float32(v.X), float32(v.Y), float32(v.Z))
	}
	return out
}

func flattenVec2(vs []core.Vec2) []float32 {
	out := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		out = append(out, float32(v.X), float32(v.Y))
	}
	return out
}

// readVec3 accepts packed (vec3f) and padded (vec3fa) float layouts
func readVec3(d *params.Data, name string) ([]core.Vec3, error) {
	if d.Type != params.Vec3f && d.Type != params.Vec3fa {
		return nil, fmt.Errorf("triangle mesh %s type %v: %w", name, d.Type, core.ErrUnsupportedLayout)
	}
	stride := d.Type.Components()
	n := d.Len()
	out := make([]core.Vec3, n)
	for i := 0; i < n; i++ {
		f := d.Floats[i*stride:]
		out[i] = core.NewVec3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return out, nil
}

func readVec2(d *params.Data, name string) ([]core.Vec2, error) {
	if d.Type != params.Vec2f {
		return nil, fmt.Errorf("triangle mesh %s type %v: %w", name, d.Type, core.ErrUnsupportedLayout)
	}
	n := d.Len()
	out := make([]core.Vec2, n)
	for i := 0; i < n; i++ {
		out[i] = core.NewVec2(float64(d.Floats[2*i]), float64(d.Floats[2*i+1]))
	}
	return out, nil
}

// readColors accepts RGB and RGBA float layouts; alpha is dropped
func readColors(d *params.Data) ([]core.Vec3, error) {
	if d.Type != params.Vec3f && d.Type != params.Vec3fa && d.Type != params.Vec4f {
		return nil, fmt.Errorf("triangle mesh vertex.color type %v: %w", d.Type, core.ErrUnsupportedLayout)
	}
	stride := d.Type.Components()
	n := d.Len()
	out := make([]core.Vec3, n)
	for i := 0; i < n; i++ {
		f := d.Floats[i*stride:]
		out[i] = core.NewVec3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return out, nil
}

// readIndices accepts triangles packed three-wide (vec3i) or four-wide (vec4i)
func readIndices(d *params.Data) ([][3]int32, error) {
	if d.Type != params.Vec3i && d.Type != params.Vec4i {
		return nil, fmt.Errorf("triangle mesh index type %v: %w", d.Type, core.ErrUnsupportedLayout)
	}
	stride := d.Type.Components()
	n := d.Len()
	out := make([][3]int32, n)
	for i := 0; i < n; i++ {
		out[i] = [3]int32{d.Ints[i*stride], d.Ints[i*stride+1], d.Ints[i*stride+2]}
	}
	return out, nil
}
