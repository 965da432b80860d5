package gcode

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle in machine coordinates.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// BoundsViolation is a drawing move that leaves the work area.
type BoundsViolation struct {
	MoveIndex int
	X, Y      float64
	Distance  float64 // how far outside the work area, mm
}

// CheckBounds reports drawing moves whose end point lies outside area by more
// than tolerance. At most one violation is reported per move.
func CheckBounds(moves []GCodeMove, area Rect, tolerance float64) []BoundsViolation {
	var violations []BoundsViolation
	for i, m := range moves {
		if !m.Drawing {
			continue
		}
		for _, p := range [2][2]float64{{m.FromX, m.FromY}, {m.ToX, m.ToY}} {
			d := distanceOutside(p[0], p[1], area)
			if d > tolerance {
				violations = append(violations, BoundsViolation{MoveIndex: i, X: p[0], Y: p[1], Distance: d})
				break
			}
		}
	}
	return violations
}

// distanceOutside returns 0 for points inside or on r, otherwise the distance
// to the nearest point of r.
func distanceOutside(px, py float64, r Rect) float64 {
	nearestX := math.Max(r.X0, math.Min(px, r.X1))
	nearestY := math.Max(r.Y0, math.Min(py, r.Y1))
	dx := px - nearestX
	dy := py - nearestY
	return math.Sqrt(dx*dx + dy*dy)
}

// FormatBoundsWarnings produces human-readable messages for violations.
func FormatBoundsWarnings(violations []BoundsViolation) []string {
	var warnings []string
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf(
			"Move %d draws at (%.1f, %.1f), %.2f mm outside the work area",
			v.MoveIndex+1, v.X, v.Y, v.Distance))
	}
	return warnings
}

// Contours groups consecutive drawing feed moves into paths and returns the
// bounding rectangle of every path that closes on itself. Any other move
// ends the current path. Zero-length drawing moves are ignored.
func Contours(moves []GCodeMove) []Rect {
	var rects []Rect
	var path [][2]float64

	flush := func() {
		if len(path) >= 4 && samePoint(path[0], path[len(path)-1]) {
			r := Rect{X0: path[0][0], Y0: path[0][1], X1: path[0][0], Y1: path[0][1]}
			for _, p := range path[1:] {
				r.X0 = math.Min(r.X0, p[0])
				r.Y0 = math.Min(r.Y0, p[1])
				r.X1 = math.Max(r.X1, p[0])
				r.Y1 = math.Max(r.Y1, p[1])
			}
			rects = append(rects, r)
		}
		path = nil
	}

	for _, m := range moves {
		if !m.Drawing || m.Type != MoveFeed {
			flush()
			continue
		}
		if m.FromX == m.ToX && m.FromY == m.ToY {
			continue
		}
		if len(path) == 0 {
			path = append(path, [2]float64{m.FromX, m.FromY})
		}
		path = append(path, [2]float64{m.ToX, m.ToY})
	}
	flush()
	return rects
}

func samePoint(a, b [2]float64) bool {
	return math.Abs(a[0]-b[0]) < 1e-6 && math.Abs(a[1]-b[1]) < 1e-6
}
