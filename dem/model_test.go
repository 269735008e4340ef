package dem

import (
	"context"
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/logging"
)

func testModel(t *testing.T, cells []float64, noData *float64, geographic bool) *Model {
	t.Helper()
	raster, err := NewMemoryRaster(4, 4, cells)
	test.That(t, err, test.ShouldBeNil)
	model, err := NewModel(ModelConfig{
		Width:       4,
		Height:      4,
		OriginLon:   44.0,
		OriginLat:   40.0,
		ResLon:      0.01,
		ResLat:      -0.01,
		NoDataValue: noData,
		Geographic:  geographic,
	}, raster, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return model
}

func rampCells() []float64 {
	cells := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			cells[r*4+c] = float64(r*10 + c)
		}
	}
	return cells
}

func TestSampleAtGridNode(t *testing.T) {
	model := testModel(t, rampCells(), nil, true)
	// on a raster node the blend collapses to the node value; the coordinate
	// arithmetic still carries float roundoff, hence the tolerance
	v, err := model.SampleElevation(context.Background(), 40.0-0.01, 44.0+0.02)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 12.0)

	v, err = model.SampleElevation(context.Background(), 40.0, 44.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 0.0)
}

func TestSampleBilinear(t *testing.T) {
	model := testModel(t, rampCells(), nil, true)
	// midpoint of the 2x2 window (0,0)-(1,1): mean of 0, 1, 10, 11
	v, err := model.SampleElevation(context.Background(), 40.0-0.005, 44.0+0.005)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 5.5, 1e-9)
}

func TestSampleRefusesNonGeographic(t *testing.T) {
	model := testModel(t, rampCells(), nil, false)
	_, err := model.SampleElevation(context.Background(), 40.0-0.01, 44.0+0.01)
	test.That(t, err, test.ShouldEqual, ErrNotGeographic)
}

func TestSampleOutOfBounds(t *testing.T) {
	model := testModel(t, rampCells(), nil, true)

	// one pixel beyond the declared width
	_, err := model.SampleElevation(context.Background(), 40.0-0.01, 44.0+0.04)
	test.That(t, err, test.ShouldEqual, ErrOutOfBounds)
	// one pixel beyond the declared height
	_, err = model.SampleElevation(context.Background(), 40.0-0.04, 44.0+0.01)
	test.That(t, err, test.ShouldEqual, ErrOutOfBounds)
	// on the last row/col there is no room for the 2x2 window margin
	_, err = model.SampleElevation(context.Background(), 40.0-0.03, 44.0+0.03)
	test.That(t, err, test.ShouldEqual, ErrOutOfBounds)
	// north or west of the origin
	_, err = model.SampleElevation(context.Background(), 40.01, 44.01)
	test.That(t, err, test.ShouldEqual, ErrOutOfBounds)
}

func TestSampleNoDataFallback(t *testing.T) {
	noData := -9999.0
	cells := rampCells()
	cells[0] = noData // invalidate window corner (0,0)
	model := testModel(t, cells, &noData, true)

	// partial window falls back to the first valid neighbor, not a blend
	v, err := model.SampleElevation(context.Background(), 40.0-0.005, 44.0+0.005)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 1.0)

	// NaN cells are treated as invalid too; the window at (1,1) is
	// {NaN, 12, 21, 22} and the first valid neighbor is 12
	cells2 := rampCells()
	cells2[5] = math.NaN()
	model2 := testModel(t, cells2, nil, true)
	v, err = model2.SampleElevation(context.Background(), 40.0-0.015, 44.0+0.015)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, 12.0)

	// fully empty window
	cells3 := []float64{
		noData, noData, 2, 3,
		noData, noData, 6, 7,
		20, 21, 22, 23,
		30, 31, 32, 33,
	}
	model3 := testModel(t, cells3, &noData, true)
	_, err = model3.SampleElevation(context.Background(), 40.0-0.005, 44.0+0.005)
	test.That(t, err, test.ShouldEqual, ErrNoData)
}

func TestVerticalDatumOffset(t *testing.T) {
	raster, err := NewMemoryRaster(4, 4, rampCells())
	test.That(t, err, test.ShouldBeNil)
	model, err := NewModel(ModelConfig{
		Width: 4, Height: 4,
		OriginLon: 44.0, OriginLat: 40.0,
		ResLon: 0.01, ResLat: -0.01,
		Geographic:           true,
		VerticalDatumOffsetM: 17.5,
	}, raster, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	v, err := model.SampleElevation(context.Background(), 40.0-0.01, 44.0+0.01)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 11.0+17.5)
}

func TestNewModelValidation(t *testing.T) {
	raster, err := NewMemoryRaster(4, 4, rampCells())
	test.That(t, err, test.ShouldBeNil)
	logger := logging.NewTestLogger(t)

	_, err = NewModel(ModelConfig{Width: 4, Height: 4, ResLon: 0.01, ResLat: -0.01}, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewModel(ModelConfig{Width: 0, Height: 4, ResLon: 0.01, ResLat: -0.01}, raster, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewModel(ModelConfig{Width: 4, Height: 4, ResLon: -0.01, ResLat: -0.01}, raster, logger)
	test.That(t, err, test.ShouldNotBeNil)
	// north-up rasters must have a negative latitude step
	_, err = NewModel(ModelConfig{Width: 4, Height: 4, ResLon: 0.01, ResLat: 0.01}, raster, logger)
	test.That(t, err, test.ShouldNotBeNil)

	model, err := NewModel(ModelConfig{Width: 4, Height: 4, ResLon: 0.01, ResLat: -0.01, Geographic: true}, raster, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Config().Policy, test.ShouldEqual, NearestValidNeighbor)
}

func TestMemoryRasterWindows(t *testing.T) {
	raster, err := NewMemoryRaster(4, 4, rampCells())
	test.That(t, err, test.ShouldBeNil)

	window, err := raster.ReadWindow(context.Background(), 1, 1, 2, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, window, test.ShouldResemble, []float64{11, 12, 21, 22})

	_, err = raster.ReadWindow(context.Background(), 3, 3, 4, 4)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = raster.ReadWindow(context.Background(), 2, 2, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = raster.ReadWindow(ctx, 0, 0, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewMemoryRaster(4, 4, []float64{1, 2, 3})
	test.That(t, err, test.ShouldNotBeNil)
}
