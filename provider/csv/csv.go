// Package csv reads point tables with two coordinate columns and writes
// frames with their geometry as WKT.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

const Name = "csv"

// config keys
const (
	ConfigKeyPath        = "path"
	ConfigKeyX           = "x"
	ConfigKeyY           = "y"
	ConfigKeyWKT         = "wkt"
	ConfigKeySRID        = "srid"
	ConfigKeyDropMissing = "drop_missing"
	ConfigKeyKeepCoords  = "keep_coords"
	ConfigKeyDelimiter   = "delimiter"
	DefaultGeomColumn    = "geometry"
)

var (
	ErrMissingColumn = errors.New("csv: coordinate column not found")
	ErrCoordinate    = errors.New("csv: invalid coordinate")
)

func init() {
	provider.Register(Name, NewReader, NewWriter)
}

// Reader attaches point geometry to a plain table. Geometry comes either
// from the X and Y columns or from a WKT column.
type Reader struct {
	Path        string
	X, Y        string
	WKT         string
	SRID        crs.SRID
	DropMissing bool
	KeepCoords  bool
	Comma       rune
}

func NewReader(config dict.Dicter) (provider.Reader, error) {
	var (
		r   = &Reader{Comma: ','}
		err error
		def string
	)
	if r.Path, err = config.String(ConfigKeyPath, nil); err != nil {
		return nil, err
	}
	if r.WKT, err = config.String(ConfigKeyWKT, &def); err != nil {
		return nil, err
	}
	if r.WKT == "" {
		if r.X, err = config.String(ConfigKeyX, nil); err != nil {
			return nil, err
		}
		if r.Y, err = config.String(ConfigKeyY, nil); err != nil {
			return nil, err
		}
	}
	srid := 0
	if srid, err = config.Int(ConfigKeySRID, &srid); err != nil {
		return nil, err
	}
	r.SRID = crs.SRID(srid)
	no := false
	if r.DropMissing, err = config.Bool(ConfigKeyDropMissing, &no); err != nil {
		return nil, err
	}
	if r.KeepCoords, err = config.Bool(ConfigKeyKeepCoords, &no); err != nil {
		return nil, err
	}
	comma := ","
	if comma, err = config.String(ConfigKeyDelimiter, &comma); err != nil {
		return nil, err
	}
	if comma == `\t` || comma == "tab" {
		comma = "\t"
	}
	if len([]rune(comma)) != 1 {
		return nil, fmt.Errorf("csv: delimiter must be a single character, got %q", comma)
	}
	r.Comma = []rune(comma)[0]
	return r, nil
}

func (r *Reader) Read(ctx context.Context) (*frame.Frame, error) {
	file, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	defer file.Close()
	return r.decode(ctx, file)
}

func (r *Reader) decode(ctx context.Context, in io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(in)
	cr.Comma = r.Comma
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %v: %w", r.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %v: no header row", r.Path)
	}
	header := records[0]
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	geomCols := []string{r.X, r.Y}
	if r.WKT != "" {
		geomCols = []string{r.WKT}
	}
	var geomIdx []int
	for _, c := range geomCols {
		i, ok := index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %v", ErrMissingColumn, c, r.Path)
		}
		geomIdx = append(geomIdx, i)
	}

	// attribute columns
	var (
		cols    []string
		colIdx  []int
		skipped = make(map[int]bool)
	)
	if r.WKT != "" || !r.KeepCoords {
		for _, i := range geomIdx {
			skipped[i] = true
		}
	}
	for i, h := range header {
		if skipped[i] {
			continue
		}
		cols = append(cols, strings.TrimSpace(h))
		colIdx = append(colIdx, i)
	}

	body := records[1:]
	kinds := make([]kind, len(colIdx))
	for j, ci := range colIdx {
		kinds[j] = inferKind(body, ci)
	}

	b := frame.NewBuilder(r.SRID, cols...)
	dropped := 0
	for n, rec := range body {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := n + 2
		g, err := r.geometry(rec, geomIdx)
		if err != nil {
			if r.DropMissing {
				dropped++
				continue
			}
			return nil, fmt.Errorf("%v line %d: %w", r.Path, line, err)
		}
		vals := make([]interface{}, len(colIdx))
		for j, ci := range colIdx {
			vals[j] = kinds[j].parse(field(rec, ci))
		}
		if err := b.Add(g, vals...); err != nil {
			return nil, fmt.Errorf("csv: %v line %d: %w", r.Path, line, err)
		}
	}
	if dropped > 0 {
		log.Info().Str("path", r.Path).Int("dropped", dropped).Msg("csv rows without coordinates skipped")
	}
	log.Debug().Str("path", r.Path).Int("rows", b.Len()).Msg("csv read")
	return b.Frame()
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (r *Reader) geometry(rec []string, idx []int) (orb.Geometry, error) {
	if r.WKT != "" {
		s := field(rec, idx[0])
		if s == "" {
			return nil, fmt.Errorf("%w: empty %s", ErrCoordinate, r.WKT)
		}
		g, err := wkt.Unmarshal(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCoordinate, err)
		}
		return g, nil
	}
	x, ok := coordinate(field(rec, idx[0]))
	if !ok {
		return nil, fmt.Errorf("%w: %s=%q", ErrCoordinate, r.X, field(rec, idx[0]))
	}
	y, ok := coordinate(field(rec, idx[1]))
	if !ok {
		return nil, fmt.Errorf("%w: %s=%q", ErrCoordinate, r.Y, field(rec, idx[1]))
	}
	return orb.Point{x, y}, nil
}

// coordinate parses a finite number; NaN and Inf count as missing.
func coordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Layers reports the table as one point layer.
func (r *Reader) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	f, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	return []provider.LayerInfo{provider.NewLayer(name, f)}, nil
}
