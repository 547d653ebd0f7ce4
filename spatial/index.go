package spatial

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighbor is one spatial query result.
type Neighbor struct {
	Index int
	Dist  float64
}

type point struct {
	pos mgl64.Vec3
	id  int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.pos[d] - q.pos[d]
}

func (p point) Dims() int { return 3 }

// Distance follows the kdtree convention of squared euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	v := p.pos.Sub(q.pos)
	return v.Dot(v)
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p points) Pivot(d kdtree.Dim) int {
	return plane{points: p, Dim: d}.Pivot()
}

type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].pos[p.Dim] < p.points[j].pos[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

// Index groups surface points by owning sphere and answers neighbor
// queries over the full cloud. Read only after NewIndex, safe for
// concurrent queries.
type Index struct {
	positions []mgl64.Vec3
	owners    []int
	tree      *kdtree.Tree

	spherePoints map[int][]int
	sphereIDs    []int
	centroids    map[int]mgl64.Vec3

	medianNN float64
}

func NewIndex(positions []mgl64.Vec3, owners []int) *Index {
	idx := &Index{
		positions:    positions,
		owners:       owners,
		spherePoints: make(map[int][]int),
		centroids:    make(map[int]mgl64.Vec3),
	}

	data := make(points, len(positions))
	for i, p := range positions {
		data[i] = point{pos: p, id: i}
		idx.spherePoints[owners[i]] = append(idx.spherePoints[owners[i]], i)
	}
	idx.tree = kdtree.New(data, true)

	for sphere, pts := range idx.spherePoints {
		idx.sphereIDs = append(idx.sphereIDs, sphere)
		var c mgl64.Vec3
		for _, i := range pts {
			c = c.Add(positions[i])
		}
		idx.centroids[sphere] = c.Mul(1.0 / float64(len(pts)))
	}
	sort.Ints(idx.sphereIDs)

	idx.medianNN = idx.computeMedianNN()
	return idx
}

// Len returns the number of indexed points.
func (idx *Index) Len() int { return len(idx.positions) }

// Spheres returns the owning sphere ids in ascending order.
func (idx *Index) Spheres() []int { return idx.sphereIDs }

// SpherePoints returns the point indices owned by the given sphere,
// in parse order.
func (idx *Index) SpherePoints(sphere int) []int { return idx.spherePoints[sphere] }

// Centroid returns the centroid of the points owned by the sphere.
// Used as the outward orientation reference for faces.
func (idx *Index) Centroid(sphere int) mgl64.Vec3 { return idx.centroids[sphere] }

// Owner returns the owning sphere of a point.
func (idx *Index) Owner(i int) int { return idx.owners[i] }

// Position returns the coordinates of a point.
func (idx *Index) Position(i int) mgl64.Vec3 { return idx.positions[i] }

// MedianNearestNeighborDist is the median over all points of the
// distance to their nearest neighbor, a proxy for sampling density.
func (idx *Index) MedianNearestNeighborDist() float64 { return idx.medianNN }

// Nearest returns up to k nearest neighbors of point i, excluding i
// itself, sorted by ascending distance with ties broken by index.
func (idx *Index) Nearest(i, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	// one extra slot since the query point is in the tree
	keeper := kdtree.NewNKeeper(k + 1)
	idx.tree.NearestSet(keeper, point{pos: idx.positions[i], id: i})
	res := idx.collect(keeper.Heap, i)
	if len(res) < k || res[k-1].Dist == 0 {
		return res
	}
	// re-query by radius so that equal distances at the cutoff always
	// resolve by point index, independent of tree traversal order
	res = idx.Radius(i, res[k-1].Dist*(1+1e-12))
	if len(res) > k {
		res = res[:k]
	}
	return res
}

// Radius returns all neighbors of point i within distance r, excluding
// i itself, sorted by ascending distance with ties broken by index.
func (idx *Index) Radius(i int, r float64) []Neighbor {
	if r <= 0 {
		return nil
	}
	keeper := kdtree.NewDistKeeper(r * r)
	idx.tree.NearestSet(keeper, point{pos: idx.positions[i], id: i})
	return idx.collect(keeper.Heap, i)
}

func (idx *Index) collect(heap []kdtree.ComparableDist, self int) []Neighbor {
	res := make([]Neighbor, 0, len(heap))
	for _, cd := range heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(point)
		if p.id == self {
			continue
		}
		res = append(res, Neighbor{Index: p.id, Dist: math.Sqrt(cd.Dist)})
	}
	sort.Slice(res, func(a, b int) bool {
		if res[a].Dist != res[b].Dist {
			return res[a].Dist < res[b].Dist
		}
		return res[a].Index < res[b].Index
	})
	return res
}

func (idx *Index) computeMedianNN() float64 {
	if len(idx.positions) < 2 {
		return 0
	}
	dists := make([]float64, 0, len(idx.positions))
	for i := range idx.positions {
		if nn := idx.Nearest(i, 1); len(nn) > 0 {
			dists = append(dists, nn[0].Dist)
		}
	}
	sort.Float64s(dists)
	return dists[len(dists)/2]
}
