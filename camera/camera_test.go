package camera

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func TestIntrinsicsCheckValid(t *testing.T) {
	good := &PinholeCameraIntrinsics{Width: 1000, Height: 1000, Fx: 1000, Fy: 1000, Ppx: 500, Ppy: 500}
	test.That(t, good.CheckValid(), test.ShouldBeNil)

	var nilParams *PinholeCameraIntrinsics
	test.That(t, nilParams.CheckValid(), test.ShouldNotBeNil)

	bad := &PinholeCameraIntrinsics{Width: 1000, Height: 1000, Fx: 0, Fy: 1000}
	err := bad.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)
}

func TestIntrinsicsFromJSONFile(t *testing.T) {
	params := PinholeCameraIntrinsics{Width: 4000, Height: 3000, Fx: 3120.5, Fy: 3118.2, Ppx: 2001.4, Ppy: 1499.6}
	b, err := json.Marshal(&params)
	test.That(t, err, test.ShouldBeNil)
	jsonPath := filepath.Join(t.TempDir(), "intrinsics.json")
	test.That(t, os.WriteFile(jsonPath, b, 0o600), test.ShouldBeNil)

	read, err := NewPinholeCameraIntrinsicsFromJSONFile(jsonPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *read, test.ShouldResemble, params)

	_, err = NewPinholeCameraIntrinsicsFromJSONFile(filepath.Join(t.TempDir(), "nope.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIntrinsicsFromFOV(t *testing.T) {
	params, err := NewPinholeCameraIntrinsicsFromFOV(1000, 800, 90)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.Fx, test.ShouldAlmostEqual, 500, 1e-9)
	test.That(t, params.Fy, test.ShouldAlmostEqual, 500, 1e-9)
	test.That(t, params.Ppx, test.ShouldEqual, 500.0)
	test.That(t, params.Ppy, test.ShouldEqual, 400.0)
	test.That(t, params.CheckValid(), test.ShouldBeNil)

	_, err = NewPinholeCameraIntrinsicsFromFOV(1000, 800, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewPinholeCameraIntrinsicsFromFOV(0, 800, 90)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestIntrinsicsRescale(t *testing.T) {
	params := &PinholeCameraIntrinsics{Width: 4000, Height: 3000, Fx: 3000, Fy: 3000, Ppx: 2000, Ppy: 1500}
	scaled, err := params.Rescale(2000, 1500)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scaled.Fx, test.ShouldAlmostEqual, 1500)
	test.That(t, scaled.Fy, test.ShouldAlmostEqual, 1500)
	test.That(t, scaled.Ppx, test.ShouldAlmostEqual, 1000)
	test.That(t, scaled.Ppy, test.ShouldAlmostEqual, 750)

	_, err = params.Rescale(-1, 100)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBrownConradyRoundTrip(t *testing.T) {
	bc, err := NewBrownConrady([]float64{0.1, 0.01, 0.001, 0.001, 0.002})
	test.That(t, err, test.ShouldBeNil)
	for _, pt := range [][2]float64{
		{0, 0},
		{0.1, 0.1},
		{0.3, -0.4},
		{-0.5, 0.5},
		{0.7, 0.0},
	} {
		xd, yd := bc.Transform(pt[0], pt[1])
		xu, yu := bc.Undistort(xd, yd)
		test.That(t, xu, test.ShouldAlmostEqual, pt[0], 1e-4)
		test.That(t, yu, test.ShouldAlmostEqual, pt[1], 1e-4)
	}
}

func TestBrownConradyZeroIsIdentity(t *testing.T) {
	bc, err := NewBrownConrady(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.IsZero(), test.ShouldBeTrue)
	x, y := bc.Transform(0.25, -0.75)
	test.That(t, x, test.ShouldEqual, 0.25)
	test.That(t, y, test.ShouldEqual, -0.75)
	x, y = bc.Undistort(0.25, -0.75)
	test.That(t, x, test.ShouldEqual, 0.25)
	test.That(t, y, test.ShouldEqual, -0.75)

	_, err = NewBrownConrady([]float64{1, 2, 3, 4, 5, 6})
	test.That(t, err, test.ShouldNotBeNil)

	short, err := NewBrownConrady([]float64{0.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, short.Parameters(), test.ShouldResemble, []float64{0.2, 0, 0, 0, 0})
}

func TestPixelToRay(t *testing.T) {
	model := &PinholeCameraModel{
		PinholeCameraIntrinsics: &PinholeCameraIntrinsics{
			Width: 1000, Height: 1000, Fx: 1000, Fy: 1000, Ppx: 500, Ppy: 500,
		},
	}
	ray, err := model.PixelToRay(500, 500)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ray.X, test.ShouldAlmostEqual, 0)
	test.That(t, ray.Y, test.ShouldAlmostEqual, 0)
	test.That(t, ray.Z, test.ShouldEqual, 1.0)

	ray, err = model.PixelToRay(600, 500)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ray.X, test.ShouldAlmostEqual, 0.1)
	test.That(t, ray.Y, test.ShouldAlmostEqual, 0)

	// with distortion, the undistorted ray must map back to the observed pixel
	bc, err := NewBrownConrady([]float64{-0.2, 0.05, 0, 0.001, -0.001})
	test.That(t, err, test.ShouldBeNil)
	model.Distortion = bc
	ray, err = model.PixelToRay(700, 300)
	test.That(t, err, test.ShouldBeNil)
	xd, yd := bc.Transform(ray.X, ray.Y)
	test.That(t, xd*1000+500, test.ShouldAlmostEqual, 700, 1e-1)
	test.That(t, yd*1000+500, test.ShouldAlmostEqual, 300, 1e-1)

	empty := &PinholeCameraModel{}
	_, err = empty.PixelToRay(1, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewDistorter(t *testing.T) {
	d, err := NewDistorter(BrownConradyDistortionType, []float64{0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.ModelType(), test.ShouldEqual, BrownConradyDistortionType)
	test.That(t, d.CheckValid(), test.ShouldBeNil)

	_, err = NewDistorter(DistortionType("fisheye"), nil)
	test.That(t, err, test.ShouldNotBeNil)
}
