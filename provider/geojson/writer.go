package geojson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

// Writer stores a frame as a FeatureCollection. Frames outside WGS 84
// keep their coordinates and gain a "crs" member naming the EPSG code.
type Writer struct {
	Path string
}

func NewWriter(config dict.Dicter) (provider.Writer, error) {
	path, err := config.String(ConfigKeyPath, nil)
	if err != nil {
		return nil, err
	}
	return &Writer{Path: path}, nil
}

// Encode builds the FeatureCollection for f.
func Encode(f *frame.Frame) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if f.SRID() != crs.WGS84 && f.SRID() != crs.Unknown {
		fc.ExtraMembers = geojson.Properties{
			"crs": map[string]interface{}{
				"type": "name",
				"properties": map[string]interface{}{
					"name": fmt.Sprintf("urn:ogc:def:crs:EPSG::%d", int(f.SRID())),
				},
			},
		}
	}
	f.Each(func(r frame.Record) error {
		feat := geojson.NewFeature(r.Geometry())
		feat.Properties = r.Map()
		fc.Append(feat)
		return nil
	})
	return fc
}

func (w *Writer) Write(ctx context.Context, f *frame.Frame) error {
	data, err := Encode(f).MarshalJSON()
	if err != nil {
		return fmt.Errorf("geojson: encoding: %w", err)
	}
	if dir := filepath.Dir(w.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(w.Path, data, 0o644); err != nil {
		return fmt.Errorf("geojson: %w", err)
	}
	log.Debug().Str("path", w.Path).Int("features", f.Len()).Msg("geojson written")
	return nil
}
