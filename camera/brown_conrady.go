package camera

import (
	"github.com/pkg/errors"
)

// undistortIterations is the fixed, non-adaptive iteration budget of the
// fixed-point undistortion solver. There is deliberately no convergence check;
// within the typical operating range (r^2 < 1) five passes recover the ideal
// point to better than 1e-4 normalized units.
const undistortIterations = 5

// BrownConrady is a lens distortion model with three radial and two
// tangential coefficients.
//
// The forward model maps ideal (undistorted) normalized coordinates to the
// observed ones:
//
//	x_d = x_u * (1 + k1*r² + k2*r⁴ + k3*r⁶) + 2*p1*x_u*y_u + p2*(r² + 2*x_u²)
//	y_d = y_u * (1 + k1*r² + k2*r⁴ + k3*r⁶) + 2*p2*x_u*y_u + p1*(r² + 2*y_u²)
type BrownConrady struct {
	RadialK1     float64 `json:"rk1"`
	RadialK2     float64 `json:"rk2"`
	RadialK3     float64 `json:"rk3"`
	TangentialP1 float64 `json:"tp1"`
	TangentialP2 float64 `json:"tp2"`
}

// NewBrownConrady takes in a slice of floats that will be passed into the struct in order.
func NewBrownConrady(inp []float64) (*BrownConrady, error) {
	if len(inp) > 5 {
		return nil, errors.Errorf("list of parameters too long, expected max 5, got %d", len(inp))
	}
	if len(inp) == 0 {
		return &BrownConrady{}, nil
	}
	for i := len(inp); i < 5; i++ { // fill missing values with 0.0
		inp = append(inp, 0.0)
	}
	return &BrownConrady{inp[0], inp[1], inp[2], inp[3], inp[4]}, nil
}

// CheckValid checks if the fields for BrownConrady have valid inputs.
func (bc *BrownConrady) CheckValid() error {
	if bc == nil {
		return InvalidDistortionError("BrownConrady shaped distortion_parameters not provided")
	}
	return nil
}

// ModelType returns the type of distortion model.
func (bc *BrownConrady) ModelType() DistortionType {
	return BrownConradyDistortionType
}

// Parameters returns the parameters of the distortion model as a list of floats.
func (bc *BrownConrady) Parameters() []float64 {
	if bc == nil {
		return []float64{}
	}
	return []float64{bc.RadialK1, bc.RadialK2, bc.RadialK3, bc.TangentialP1, bc.TangentialP2}
}

// IsZero reports whether every coefficient is zero, making the model an identity.
func (bc *BrownConrady) IsZero() bool {
	if bc == nil {
		return true
	}
	return bc.RadialK1 == 0 && bc.RadialK2 == 0 && bc.RadialK3 == 0 &&
		bc.TangentialP1 == 0 && bc.TangentialP2 == 0
}

// Transform applies the forward Brown-Conrady model to ideal normalized
// coordinates, producing the observed (distorted) coordinates.
func (bc *BrownConrady) Transform(x, y float64) (float64, float64) {
	if bc.IsZero() {
		return x, y
	}
	r2 := x*x + y*y
	radial := 1 + bc.RadialK1*r2 + bc.RadialK2*r2*r2 + bc.RadialK3*r2*r2*r2
	xTan := 2*bc.TangentialP1*x*y + bc.TangentialP2*(r2+2*x*x)
	yTan := bc.TangentialP1*(r2+2*y*y) + 2*bc.TangentialP2*x*y
	return x*radial + xTan, y*radial + yTan
}

// Undistort solves the inverse of the forward model by fixed-point iteration:
// starting from the observed coordinates, the forward-distorted estimate is
// computed and its residual against the observation subtracted, for a fixed
// number of passes.
func (bc *BrownConrady) Undistort(xn, yn float64) (float64, float64) {
	if bc.IsZero() {
		return xn, yn
	}
	x, y := xn, yn
	for i := 0; i < undistortIterations; i++ {
		xEst, yEst := bc.Transform(x, y)
		x -= xEst - xn
		y -= yEst - yn
	}
	return x, y
}
