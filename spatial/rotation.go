package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// The zero-attitude camera is nadir pointing: camera +x maps to East,
// camera +y to South, camera +z (optical axis) straight down.
var cameraToENUBase = mat.NewDense(3, 3, []float64{
	1, 0, 0,
	0, -1, 0,
	0, 0, -1,
})

// rotZHeading is a rotation about the Up axis by a compass heading, so that a
// heading of 90 degrees turns a north-pointing vector to the east.
func rotZHeading(headingDeg float64) *mat.Dense {
	th := DegToRad(headingDeg)
	c, s := math.Cos(th), math.Sin(th)
	return mat.NewDense(3, 3, []float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
}

// rotX is a right-handed rotation about the East axis.
func rotX(deg float64) *mat.Dense {
	th := DegToRad(deg)
	c, s := math.Cos(th), math.Sin(th)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// rotY is a right-handed rotation about the North axis.
func rotY(deg float64) *mat.Dense {
	th := DegToRad(deg)
	c, s := math.Cos(th), math.Sin(th)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotationMatrix composes the 3x3 matrix mapping camera-space vectors into the
// local ENU frame:
//
//	R = Rz(yaw) * Rx(pitch) * Ry(-roll) * base
//
// The roll angle is negated before building its rotation so that positive roll
// drops the right edge of the image against the nadir base convention. This is
// the one pinned convention for the whole engine; the end-to-end projection
// tests depend on it.
func (ea *EulerAngles) RotationMatrix() *mat.Dense {
	var r mat.Dense
	r.Mul(rotY(-ea.RollDeg), cameraToENUBase)
	r.Mul(rotX(ea.PitchDeg), &r)
	r.Mul(rotZHeading(ea.YawDeg), &r)
	return &r
}

// RotateVector applies a 3x3 rotation to an r3.Vector.
func RotateVector(r *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	}
}
