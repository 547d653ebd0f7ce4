package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is an index triple into the vertex arena, wound so that the
// geometric normal points away from the owning atomic sphere.
type Face [3]int

// Canonical returns the vertex set of the face in ascending order,
// ignoring winding. Used for duplicate detection.
func (f Face) Canonical() Face {
	a, b, c := f[0], f[1], f[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return Face{a, b, c}
}

// Mesh is a triangulated cavity surface. Vertices keep the parse order
// of the surface points, so vertex ids equal surface point ids. Faces
// reference vertices by index only; the whole structure is plain data
// and serializes directly.
type Mesh struct {
	Vertices []mgl64.Vec3
	Faces    []Face
}

// FaceMeans maps a per-vertex scalar to a per-face scalar by averaging
// over the three corners. values must be parallel to Vertices.
func (m *Mesh) FaceMeans(values []float64) []float64 {
	out := make([]float64, len(m.Faces))
	for i, f := range m.Faces {
		out[i] = (values[f[0]] + values[f[1]] + values[f[2]]) / 3.0
	}
	return out
}

// Normal returns the geometric normal of face i, not normalized.
func (m *Mesh) Normal(i int) mgl64.Vec3 {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a))
}

// ReconstructionError reports that face building produced no usable
// triangles from a non empty point cloud.
type ReconstructionError struct {
	Path   string
	Points int
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("surface %q: no faces reconstructed from %d points (input too sparse or degenerate)", e.Path, e.Points)
}
