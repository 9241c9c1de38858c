package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

// Writer stores a frame as CSV with a trailing WKT geometry column.
type Writer struct {
	Path       string
	GeomColumn string
}

func NewWriter(config dict.Dicter) (provider.Writer, error) {
	path, err := config.String(ConfigKeyPath, nil)
	if err != nil {
		return nil, err
	}
	col := DefaultGeomColumn
	if col, err = config.String(ConfigKeyWKT, &col); err != nil {
		return nil, err
	}
	return &Writer{Path: path, GeomColumn: col}, nil
}

func (w *Writer) Write(ctx context.Context, f *frame.Frame) error {
	if f.HasColumn(w.GeomColumn) {
		return fmt.Errorf("csv: geometry column %q clashes with an attribute", w.GeomColumn)
	}
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(append(f.Columns(), w.GeomColumn)); err != nil {
		return err
	}
	err = f.Each(func(r frame.Record) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		vals := r.Values()
		rec := make([]string, 0, len(vals)+1)
		for _, v := range vals {
			rec = append(rec, frame.FormatValue(v))
		}
		g := ""
		if r.Geometry() != nil {
			g = wkt.MarshalString(r.Geometry())
		}
		return cw.Write(append(rec, g))
	})
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	log.Debug().Str("path", w.Path).Int("rows", f.Len()).Msg("csv written")
	return file.Close()
}
