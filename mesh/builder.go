package mesh

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lwittmann/cosmoview/config"
	"github.com/lwittmann/cosmoview/spatial"
	"github.com/lwittmann/cosmoview/status"
)

// BuilderParams tune the neighbor filtering of the reconstruction.
// Defaults are calibrated against densely sampled single sphere
// cavities; expose them instead of guessing new ones.
type BuilderParams struct {
	// NeighborRadius bounds the neighbor search, in Angstrom.
	NeighborRadius float64
	// MaxNeighbors caps same sphere neighbors per point.
	MaxNeighbors int
	// MaxCrossNeighbors caps cross sphere neighbors for points near a
	// sphere boundary.
	MaxCrossNeighbors int
	// BoundaryFactor marks a point as boundary when its nearest cross
	// sphere neighbor is closer than BoundaryFactor times its nearest
	// same sphere neighbor.
	BoundaryFactor float64
	// NeighborsThreshold scales the local patch radii r=sqrt(area/pi)
	// in the edge acceptance test.
	NeighborsThreshold float64
	// MaxEdgeFactor scales the median nearest neighbor distance into
	// an absolute edge cap. Keeps disjoint cavity lobes unstitched.
	MaxEdgeFactor float64
}

func DefaultBuilderParams() BuilderParams {
	return BuilderParams{
		NeighborRadius:     1.0,
		MaxNeighbors:       15,
		MaxCrossNeighbors:  4,
		BoundaryFactor:     2.0,
		NeighborsThreshold: 1.5,
		MaxEdgeFactor:      4.0,
	}
}

type builder struct {
	idx    *spatial.Index
	areas  []float64
	params BuilderParams

	patchRadius []float64
	neighbors   [][]int
	maxEdge     float64

	faces []Face
	seen  map[Face]bool

	rejectedOwners int
	rejectedLong   int
}

// BuildFaces reconstructs the triangulated surface for the indexed
// point cloud. path is only used for error reporting.
func BuildFaces(idx *spatial.Index, areas []float64, params BuilderParams, path string) (*Mesh, error) {
	n := idx.Len()
	if n >= 3 {
		b := &builder{
			idx:    idx,
			areas:  areas,
			params: params,
			seen:   make(map[Face]bool),
		}
		b.prepare()
		b.run()

		if len(b.faces) > 0 {
			log.Printf("[mesh] %d faces from %d points (%d owner rejects, %d long edge rejects)",
				len(b.faces), n, b.rejectedOwners, b.rejectedLong)
			vertices := make([]mgl64.Vec3, n)
			for i := range vertices {
				vertices[i] = idx.Position(i)
			}
			return &Mesh{Vertices: vertices, Faces: b.faces}, nil
		}
	}
	return nil, &ReconstructionError{Path: path, Points: n}
}

func (b *builder) prepare() {
	n := b.idx.Len()
	b.maxEdge = b.params.MaxEdgeFactor * b.idx.MedianNearestNeighborDist()

	b.patchRadius = make([]float64, n)
	for i := range b.patchRadius {
		b.patchRadius[i] = math.Sqrt(math.Abs(b.areas[i]) / math.Pi)
	}

	b.neighbors = make([][]int, n)
	for i := 0; i < n; i++ {
		b.neighbors[i] = b.selectNeighbors(i)
	}
}

// selectNeighbors picks same sphere neighbors first and admits a
// bounded number of cross sphere ones only for boundary points.
func (b *builder) selectNeighbors(i int) []int {
	all := b.idx.Radius(i, b.params.NeighborRadius)
	owner := b.idx.Owner(i)

	same := make([]spatial.Neighbor, 0, len(all))
	cross := make([]spatial.Neighbor, 0, 8)
	for _, nb := range all {
		if b.idx.Owner(nb.Index) == owner {
			same = append(same, nb)
		} else {
			cross = append(cross, nb)
		}
	}
	if len(same) > b.params.MaxNeighbors {
		same = same[:b.params.MaxNeighbors]
	}

	out := make([]int, 0, len(same)+b.params.MaxCrossNeighbors)
	for _, nb := range same {
		out = append(out, nb.Index)
	}
	if len(same) > 0 && len(cross) > 0 &&
		cross[0].Dist < b.params.BoundaryFactor*same[0].Dist {
		limit := b.params.MaxCrossNeighbors
		if limit > len(cross) {
			limit = len(cross)
		}
		for _, nb := range cross[:limit] {
			out = append(out, nb.Index)
		}
	}
	return out
}

func (b *builder) run() {
	n := b.idx.Len()
	for i := 0; i < n; i++ {
		if i%1000 == 0 {
			status.Progress(float32(i)/float32(n), "Building faces %d/%d", i+1, n)
			if config.GetVerbosity() >= config.VerbosityDebug {
				log.Printf("[mesh] building faces %d/%d", i+1, n)
			}
		}
		for _, j := range b.neighbors[i] {
			if j == i {
				continue
			}
			distIJ := b.dist(i, j)
			for _, k := range b.neighbors[j] {
				if k == i || k == j {
					continue
				}
				distIK := b.dist(i, k)
				if b.edgeOK(i, j, distIJ) && b.edgeOK(i, k, distIK) {
					b.emit(i, j, k, b.dist(j, k), distIJ, distIK)
				}
				distJK := b.dist(j, k)
				if b.edgeOK(j, k, distJK) && b.edgeOK(i, k, distIK) {
					b.emit(j, k, i, distIJ, distJK, distIK)
				}
			}
		}
	}
}

func (b *builder) dist(i, j int) float64 {
	return b.idx.Position(i).Sub(b.idx.Position(j)).Len()
}

// edgeOK is the density derived acceptance test: the edge must be
// shorter than the threshold times the sum of the two patch radii.
func (b *builder) edgeOK(i, j int, dist float64) bool {
	return dist < b.params.NeighborsThreshold*(b.patchRadius[i]+b.patchRadius[j])
}

// emit accepts a candidate triangle. dA, dB, dC are its three edge
// lengths in any order.
func (b *builder) emit(v0, v1, v2 int, dA, dB, dC float64) {
	canon := Face{v0, v1, v2}.Canonical()
	if b.seen[canon] {
		return
	}

	if b.maxEdge > 0 && (dA > b.maxEdge || dB > b.maxEdge || dC > b.maxEdge) {
		b.seen[canon] = true
		b.rejectedLong++
		return
	}

	o0, o1, o2 := b.idx.Owner(v0), b.idx.Owner(v1), b.idx.Owner(v2)
	if o0 != o1 && o1 != o2 && o0 != o2 {
		// a face spanning three spheres bridges unrelated lobes
		b.seen[canon] = true
		b.rejectedOwners++
		return
	}

	b.seen[canon] = true
	b.faces = append(b.faces, b.wind(canon))
}

// wind orients the face so its normal points away from the centroid of
// the sphere owning the lowest vertex.
func (b *builder) wind(f Face) Face {
	a := b.idx.Position(f[0])
	p1 := b.idx.Position(f[1])
	p2 := b.idx.Position(f[2])

	center := b.idx.Centroid(b.idx.Owner(f[0]))
	faceCenter := a.Add(p1).Add(p2).Mul(1.0 / 3.0)
	outward := faceCenter.Sub(center)

	normal := p1.Sub(a).Cross(p2.Sub(a))
	if normal.Dot(outward) < 0 {
		return Face{f[0], f[2], f[1]}
	}
	return f
}
