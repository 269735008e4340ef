// Package main is the groundsight command, a pixel-to-ground geolocation tool
// for geotagged photographs.
package main

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/camera"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/dem"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/geolocate"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/logging"
	"github.com/HaykGevorgyan21/AW-5-photo-Exif-data-with-gps-loaction/spatial"
)

const (
	// Flags.
	flagCamera  = "camera"
	flagPose    = "pose"
	flagDEM     = "dem"
	flagGround  = "ground"
	flagPixel   = "pixel"
	flagWorkers = "parallel"
	flagAutofix = "autofix"
	flagLat     = "lat"
	flagLon     = "lon"
)

func main() {
	logger := logging.NewLogger("groundsight")

	app := &cli.App{
		Name:  "groundsight",
		Usage: "project photograph pixels onto the ground",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger.SetLevel(logging.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "locate",
				Usage: "compute the ground coordinate seen by one or more pixels",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagCamera,
						Usage:    "camera model JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagPose,
						Usage:    "camera pose JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagDEM,
						Usage: "GeoTIFF elevation model `FILE` for terrain-aware projection",
					},
					&cli.Float64Flag{
						Name:  flagGround,
						Usage: "flat ground elevation in meters AMSL",
					},
					&cli.StringSliceFlag{
						Name:     flagPixel,
						Usage:    "pixel to project as `U,V`; repeatable",
						Required: true,
					},
					&cli.IntFlag{
						Name:  flagWorkers,
						Usage: "number of concurrent projections",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  flagAutofix,
						Usage: "resolve attitude sign conventions before projecting",
					},
				},
				Action: func(c *cli.Context) error {
					return locateAction(c, logger)
				},
			},
			{
				Name:  "autofix",
				Usage: "report the attitude sign convention that best fits the scene",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagCamera,
						Usage:    "camera model JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     flagPose,
						Usage:    "camera pose JSON `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagDEM,
						Usage: "GeoTIFF elevation model `FILE`",
					},
					&cli.Float64Flag{
						Name:  flagGround,
						Usage: "flat ground elevation in meters AMSL",
					},
				},
				Action: func(c *cli.Context) error {
					return autofixAction(c, logger)
				},
			},
			{
				Name:  "demsample",
				Usage: "sample a GeoTIFF elevation model at a coordinate",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagDEM,
						Usage:    "GeoTIFF elevation model `FILE`",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     flagLat,
						Usage:    "latitude in degrees",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     flagLon,
						Usage:    "longitude in degrees",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					return demSampleAction(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func locateAction(c *cli.Context, logger logging.Logger) error {
	projector, err := buildProjector(c, logger)
	if err != nil {
		return err
	}
	pixels, err := parsePixels(c.StringSlice(flagPixel))
	if err != nil {
		return err
	}
	if c.Bool(flagAutofix) {
		attitude, err := geolocate.AutoCorrectAttitude(c.Context, *projector)
		if err != nil {
			return errors.Wrap(err, "attitude auto-correction failed")
		}
		projector.Pose.Attitude = attitude
	}

	outcomes := projector.ProjectBatch(c.Context, pixels, c.Int(flagWorkers))
	type row struct {
		U      float64                     `json:"u"`
		V      float64                     `json:"v"`
		Result *geolocate.ProjectionResult `json:"result,omitempty"`
		Error  string                      `json:"error,omitempty"`
	}
	rows := make([]row, 0, len(outcomes))
	for _, outcome := range outcomes {
		r := row{U: outcome.Pixel.X, V: outcome.Pixel.Y}
		if outcome.Err != nil {
			r.Error = outcome.Err.Error()
		} else {
			res := outcome.Result
			r.Result = &res
		}
		rows = append(rows, r)
	}
	return printJSON(c.App.Writer, rows)
}

func autofixAction(c *cli.Context, logger logging.Logger) error {
	projector, err := buildProjector(c, logger)
	if err != nil {
		return err
	}
	attitude, err := geolocate.AutoCorrectAttitude(c.Context, *projector)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, attitude)
}

func demSampleAction(c *cli.Context, logger logging.Logger) error {
	model, err := dem.DecodeGeoTIFFFile(c.String(flagDEM), logger)
	if err != nil {
		return errors.Wrap(err, "reading elevation model")
	}
	elevation, err := model.SampleElevation(c.Context, c.Float64(flagLat), c.Float64(flagLon))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, map[string]float64{
		"lat":            c.Float64(flagLat),
		"lon":            c.Float64(flagLon),
		"elevation_amsl": elevation,
	})
}

func buildProjector(c *cli.Context, logger logging.Logger) (*geolocate.Projector, error) {
	model, err := loadCameraModel(c.String(flagCamera))
	if err != nil {
		return nil, errors.Wrap(err, "reading camera model")
	}
	pose, err := loadPose(c.String(flagPose))
	if err != nil {
		return nil, errors.Wrap(err, "reading camera pose")
	}
	projector := &geolocate.Projector{
		Model:               model,
		Pose:                pose,
		GroundElevationAMSL: c.Float64(flagGround),
		Logger:              logger,
	}
	if demPath := c.String(flagDEM); demPath != "" {
		terrain, err := dem.DecodeGeoTIFFFile(demPath, logger.Sublogger("dem"))
		if err != nil {
			return nil, errors.Wrap(err, "reading elevation model")
		}
		projector.Terrain = terrain
	}
	return projector, nil
}

// cameraModelConfig is the on-disk shape of a camera model. Distortion is
// optional and, when present, Brown-Conrady.
type cameraModelConfig struct {
	Intrinsics *camera.PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion *camera.BrownConrady            `json:"distortion"`
}

func loadCameraModel(path string) (*camera.PinholeCameraModel, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var cfg cameraModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	model := &camera.PinholeCameraModel{PinholeCameraIntrinsics: cfg.Intrinsics}
	if cfg.Distortion != nil && !cfg.Distortion.IsZero() {
		if err := cfg.Distortion.CheckValid(); err != nil {
			return nil, err
		}
		model.Distortion = cfg.Distortion
	}
	return model, nil
}

func loadPose(path string) (*spatial.CameraPose, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	var cfg spatial.CameraPoseConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg.ParseConfig()
}

func parsePixels(raw []string) ([]r2.Point, error) {
	pixels := make([]r2.Point, 0, len(raw))
	for _, s := range raw {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return nil, errors.Errorf("pixel %q is not of the form U,V", s)
		}
		u, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "pixel %q", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "pixel %q", s)
		}
		pixels = append(pixels, r2.Point{X: u, Y: v})
	}
	return pixels, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
