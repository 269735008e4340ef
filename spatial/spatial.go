// Package spatial implements the attitude and frame math used to turn a
// camera-space ray into a direction in a local East-North-Up frame.
package spatial

import "math"

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}
