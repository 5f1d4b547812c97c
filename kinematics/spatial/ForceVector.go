package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ForceVector is a spatial force, moment part first.
type ForceVector struct {
	Moment mgl64.Vec3
	Force  mgl64.Vec3
}

// Dot is the scalar product with a motion vector.
func (f ForceVector) Dot(other MotionVector) float64 {
	return f.Moment.Dot(other.Angular) + f.Force.Dot(other.Linear)
}

// Add returns f + other.
func (f ForceVector) Add(other ForceVector) ForceVector {
	return ForceVector{f.Moment.Add(other.Moment), f.Force.Add(other.Force)}
}

func vecFinite(v mgl64.Vec3) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
