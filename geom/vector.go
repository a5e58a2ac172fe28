// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package geom provides the small 2D vector/geometry math the touch
// engine needs: centroid, displacement, and velocity over normalized
// surface coordinates, trimmed to what a trackpad surface needs instead
// of a 3D scene graph.
package geom

import "math"

// Epsilon is used to distinguish when a float is close enough to zero
// that it makes no practical difference.
const Epsilon float64 = 0.000001

// V2 is a 2 element vector, also used as a point in normalized surface
// space.
type V2 struct {
	X, Y float64
}

// Add sets v to a+b and returns v, allowing chained construction.
func (v *V2) Add(a, b V2) *V2 {
	v.X, v.Y = a.X+b.X, a.Y+b.Y
	return v
}

// Sub sets v to a-b and returns v.
func (v *V2) Sub(a, b V2) *V2 {
	v.X, v.Y = a.X-b.X, a.Y-b.Y
	return v
}

// Scale sets v to a scaled by s and returns v.
func (v *V2) Scale(a V2, s float64) *V2 {
	v.X, v.Y = a.X*s, a.Y*s
	return v
}

// Dot returns the dot product of v and a.
func (v V2) Dot(a V2) float64 { return v.X*a.X + v.Y*a.Y }

// Len returns the Euclidean length of v.
func (v V2) Len() float64 { return math.Sqrt(v.Dot(v)) }

// LenSqr returns the squared Euclidean length of v, cheaper than Len
// when only relative comparisons are needed (snap-center search does
// exactly this).
func (v V2) LenSqr() float64 { return v.Dot(v) }

// Dist returns the Euclidean distance between v and a.
func (v V2) Dist(a V2) float64 { return math.Sqrt(v.DistSqr(a)) }

// DistSqr returns the squared Euclidean distance between v and a.
func (v V2) DistSqr(a V2) float64 {
	dx, dy := v.X-a.X, v.Y-a.Y
	return dx*dx + dy*dy
}

// Aeq reports whether a and b are close enough that floating point noise
// should not distinguish them.
func Aeq(a, b float64) bool { return math.Abs(a-b) < Epsilon }

// Centroid returns the mean position of pts. The zero V2 is returned for
// an empty slice; callers must check len(pts) themselves when that
// distinction matters.
func Centroid(pts []V2) V2 {
	if len(pts) == 0 {
		return V2{}
	}
	var sum V2
	for _, p := range pts {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(pts))
	return V2{sum.X / n, sum.Y / n}
}

// Clamp returns x constrained to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
