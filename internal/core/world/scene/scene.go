// Package scene is an in-memory world made of axis-aligned boxes. It backs the demo
// harness and the movement tests.
package scene

import (
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/climbforge/internal/core/geom"
	"github.com/zeusync/climbforge/internal/core/world"
)

var _ world.Query = (*Scene)(nil)

const searchIterations = 32

type Box struct {
	ID       world.BodyID
	Min, Max mgl64.Vec3
	Channels world.Channel
}

// Closest returns the point of the box nearest to p.
func (b Box) Closest(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], b.Min[0], b.Max[0]),
		mgl64.Clamp(p[1], b.Min[1], b.Max[1]),
		mgl64.Clamp(p[2], b.Min[2], b.Max[2]),
	}
}

// FaceNormal picks the outward normal of the face p lies on. Edge and corner points
// fall back to the nearest face.
func (b Box) FaceNormal(p mgl64.Vec3) mgl64.Vec3 {
	best := math.Inf(1)
	var n mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if d := math.Abs(p[axis] - b.Min[axis]); d < best {
			best = d
			n = mgl64.Vec3{}
			n[axis] = -1
		}
		if d := math.Abs(b.Max[axis] - p[axis]); d < best {
			best = d
			n = mgl64.Vec3{}
			n[axis] = 1
		}
	}
	return n
}

func (b Box) overlaps(min, max mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < min[i] || b.Min[i] > max[i] {
			return false
		}
	}
	return true
}

type Scene struct {
	mu     sync.RWMutex
	boxes  []Box
	nextID world.BodyID
}

func New() *Scene {
	return &Scene{nextID: 1}
}

// AddBox registers a box spanning min..max and returns its body id.
func (s *Scene) AddBox(min, max mgl64.Vec3, ch world.Channel) world.BodyID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	for i := 0; i < 3; i++ {
		if min[i] > max[i] {
			min[i], max[i] = max[i], min[i]
		}
	}
	s.boxes = append(s.boxes, Box{ID: id, Min: min, Max: max, Channels: ch})
	return id
}

// AddCentered registers a box by centre and half extents.
func (s *Scene) AddCentered(center, half mgl64.Vec3, ch world.Channel) world.BodyID {
	return s.AddBox(center.Sub(half), center.Add(half), ch)
}

func (s *Scene) Boxes() []Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}

func (s *Scene) candidates(ch world.Channel, params world.QueryParams, min, max mgl64.Vec3) []Box {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Box
	for _, b := range s.boxes {
		if b.Channels&ch == 0 || params.Ignores(b.ID) {
			continue
		}
		if !b.overlaps(min, max) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *Scene) LineTrace(start, end mgl64.Vec3, ch world.Channel, params world.QueryParams) world.Hit {
	dir := end.Sub(start)
	best := world.Miss(start, end)
	lo, hi := bounds(start, end, 0)
	for _, b := range s.candidates(ch, params, lo, hi) {
		t, n, ok := segmentBox(start, dir, b)
		if !ok || (best.Blocking && t >= best.Time) {
			continue
		}
		p := start.Add(dir.Mul(t))
		best = world.Hit{
			Blocking:     true,
			Time:         t,
			Distance:     dir.Len() * t,
			Location:     p,
			ImpactPoint:  p,
			Normal:       n,
			ImpactNormal: n,
			TraceStart:   start,
			TraceEnd:     end,
			Body:         b.ID,
		}
	}
	return best
}

func (s *Scene) SweepMulti(shape world.Shape, start, end mgl64.Vec3, rot mgl64.Quat, ch world.Channel, params world.QueryParams) []world.Hit {
	return s.sweep(shape, start, end, rot, ch, params, true)
}

func (s *Scene) SweepSingle(shape world.Shape, start, end mgl64.Vec3, rot mgl64.Quat, ch world.Channel, params world.QueryParams) (world.Hit, bool) {
	hits := s.sweep(shape, start, end, rot, ch, params, false)
	if len(hits) == 0 {
		return world.Miss(start, end), false
	}
	return hits[0], true
}

func (s *Scene) sweep(shape world.Shape, start, end mgl64.Vec3, rot mgl64.Quat, ch world.Channel, params world.QueryParams, multi bool) []world.Hit {
	half := 0.0
	if shape.Kind == world.ShapeCapsule {
		half = math.Max(shape.HalfHeight-shape.Radius, 0)
	}
	axis := rot.Rotate(geom.Up).Mul(half)
	delta := end.Sub(start)
	reach := half + shape.Radius

	lo, hi := bounds(start, end, reach)
	var hits []world.Hit
	for _, b := range s.candidates(ch, params, lo, hi) {
		h, ok := sweepBox(b, start, delta, axis, shape.Radius, params.SkipSeparating)
		if !ok {
			continue
		}
		h.TraceStart, h.TraceEnd = start, end
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Time < hits[j].Time })
	if !multi && len(hits) > 1 {
		hits = hits[:1]
	}
	return hits
}

// sweepBox moves a segment centre..(centre +- axis) inflated by radius along delta.
// The clearance is convex in the sweep parameter, so the first contact is found by
// locating the minimum and bisecting towards the start. A shape starting in contact
// is reported at t=0 unless skipSeparating is set and the move does not go deeper.
func sweepBox(b Box, start, delta, axis mgl64.Vec3, radius float64, skipSeparating bool) (world.Hit, bool) {
	gap := func(s float64) float64 {
		c := start.Add(delta.Mul(s))
		d, _, _ := segmentBoxDistance(c.Sub(axis), c.Add(axis), b)
		return d - radius
	}

	g0 := gap(0)
	t := 0.0
	switch {
	case g0 <= 0:
		if skipSeparating && delta.LenSqr() > 0 && gap(1e-3) >= g0 && g0 > -radius {
			return world.Hit{}, false
		}
	default:
		lo, hi := 0.0, 1.0
		for i := 0; i < searchIterations; i++ {
			m1 := lo + (hi-lo)/3
			m2 := hi - (hi-lo)/3
			if gap(m1) < gap(m2) {
				hi = m2
			} else {
				lo = m1
			}
		}
		sMin := (lo + hi) / 2
		if gap(sMin) > 0 {
			return world.Hit{}, false
		}
		lo, hi = 0, sMin
		for i := 0; i < searchIterations; i++ {
			mid := (lo + hi) / 2
			if gap(mid) > 0 {
				lo = mid
			} else {
				hi = mid
			}
		}
		t = lo
	}

	c := start.Add(delta.Mul(t))
	_, onBox, onSeg := segmentBoxDistance(c.Sub(axis), c.Add(axis), b)
	impactNormal := b.FaceNormal(onBox)
	normal := geom.SafeNormal(onSeg.Sub(onBox))
	if geom.IsZero(normal) {
		normal = impactNormal
	}
	return world.Hit{
		Blocking:         true,
		Time:             t,
		Distance:         delta.Len() * t,
		Location:         c,
		ImpactPoint:      onBox,
		Normal:           normal,
		ImpactNormal:     impactNormal,
		Body:             b.ID,
		StartPenetrating: g0 <= 0,
	}, true
}

// segmentBoxDistance returns the distance between segment a..b and the box, with the
// closest points on each. Distance to a convex set is convex along the segment.
func segmentBoxDistance(a, b mgl64.Vec3, box Box) (float64, mgl64.Vec3, mgl64.Vec3) {
	at := func(t float64) (float64, mgl64.Vec3, mgl64.Vec3) {
		p := a.Add(b.Sub(a).Mul(t))
		q := box.Closest(p)
		return p.Sub(q).Len(), q, p
	}
	if geom.DistSquared(a, b) < geom.SmallNumber {
		return at(0)
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < searchIterations; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		d1, _, _ := at(m1)
		d2, _, _ := at(m2)
		if d1 < d2 {
			hi = m2
		} else {
			lo = m1
		}
	}
	best, q, p := at((lo + hi) / 2)
	for _, t := range []float64{0, 1} {
		if d, q2, p2 := at(t); d < best {
			best, q, p = d, q2, p2
		}
	}
	return best, q, p
}

// segmentBox is the slab test. Segments starting inside the box do not hit it.
func segmentBox(start, dir mgl64.Vec3, b Box) (float64, mgl64.Vec3, bool) {
	tmin := math.Inf(-1)
	tmax := 1.0
	var n mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if start[axis] < b.Min[axis] || start[axis] > b.Max[axis] {
				return 0, n, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (b.Min[axis] - start[axis]) * inv
		t2 := (b.Max[axis] - start[axis]) * inv
		face := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			face = 1
		}
		if t1 > tmin {
			tmin = t1
			n = mgl64.Vec3{}
			n[axis] = face
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, n, false
		}
	}
	if tmin < 0 || tmin > 1 {
		return 0, n, false
	}
	return tmin, n, true
}

func bounds(a, b mgl64.Vec3, pad float64) (mgl64.Vec3, mgl64.Vec3) {
	var lo, hi mgl64.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = math.Min(a[i], b[i]) - pad
		hi[i] = math.Max(a[i], b[i]) + pad
	}
	return lo, hi
}
