//go:build cgo
// +build cgo

package gpkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkb"
	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

const (
	Name                 = "gpkg"
	DefaultIDFieldName   = "fid"
	DefaultGeomFieldName = "geom"
)

// config keys
const (
	ConfigKeyFilePath    = "filepath"
	ConfigKeyTableName   = "tablename"
	ConfigKeyGeomIDField = "id_fieldname"
)

var ErrNoFeatureTables = errors.New("gpkg: no feature tables in gpkg_contents")

func init() {
	provider.Register(Name, NewReader, NewWriter)
}

func decodeGeometry(bytes []byte) (*BinaryHeader, orb.Geometry, error) {
	h, err := NewBinaryHeader(bytes)
	if err != nil {
		return h, nil, err
	}
	if h.IsEmpty() {
		return h, nil, nil
	}

	geo, err := wkb.DecodeBytes(bytes[h.Size():])
	if err != nil {
		return h, nil, fmt.Errorf("gpkg: decoding geometry: %w", err)
	}
	g, err := provider.FromGeom(geo)
	return h, g, err
}

// Reader reads one feature table.
type Reader struct {
	// path to the geopackage file
	Filepath    string
	Table       string
	IDFieldname string
}

func NewReader(config dict.Dicter) (provider.Reader, error) {
	path, err := config.String(ConfigKeyFilePath, nil)
	if err != nil {
		return nil, err
	}
	var table string
	if table, err = config.String(ConfigKeyTableName, &table); err != nil {
		return nil, err
	}
	idField := DefaultIDFieldName
	if idField, err = config.String(ConfigKeyGeomIDField, &idField); err != nil {
		return nil, err
	}
	return &Reader{Filepath: path, Table: table, IDFieldname: idField}, nil
}

func (r *Reader) open() (*sql.DB, error) {
	return sql.Open("sqlite3", "file:"+r.Filepath+"?mode=ro")
}

// Layers lists every feature table.
func (r *Reader) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	layers, err := r.layers(ctx, db)
	if err != nil {
		return nil, err
	}
	ls := make([]provider.LayerInfo, len(layers))
	for i := range layers {
		ls[i] = layers[i]
	}
	return ls, nil
}

func (r *Reader) layers(ctx context.Context, db *sql.DB) ([]Layer, error) {
	const qtext = `
		SELECT
			c.table_name, c.min_x, c.min_y, c.max_x, c.max_y, gc.srs_id, gc.column_name, gc.geometry_type_name
		FROM
			gpkg_contents c JOIN gpkg_geometry_columns gc ON c.table_name == gc.table_name
		WHERE
			c.data_type = 'features'
		ORDER BY c.table_name`

	rows, err := db.QueryContext(ctx, qtext)
	if err != nil {
		return nil, fmt.Errorf("gpkg: listing tables: %w", err)
	}
	defer rows.Close()

	var layers []Layer
	for rows.Next() {
		var (
			tablename, geomCol, geomType string
			minX, minY, maxX, maxY       sql.NullFloat64
			srid                         sql.NullInt64
		)
		if err := rows.Scan(&tablename, &minX, &minY, &maxX, &maxY, &srid, &geomCol, &geomType); err != nil {
			return nil, err
		}
		// map the returned geom type to a geom type
		tg, err := geomNameToGeom(strings.ToUpper(geomType))
		if err != nil {
			return nil, err
		}
		layers = append(layers, Layer{
			id:            tablename,
			name:          tablename,
			tablename:     tablename,
			idFieldname:   r.IDFieldname,
			geomFieldname: geomCol,
			geomType:      tg,
			srid:          sridFromSRS(srid.Int64),
			bbox:          geom.Extent{minX.Float64, minY.Float64, maxX.Float64, maxY.Float64},
		})
	}
	return layers, rows.Err()
}

type column struct {
	name     string
	declType string
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, column{name: name, declType: strings.ToUpper(typ)})
	}
	return cols, rows.Err()
}

func (r *Reader) Read(ctx context.Context) (*frame.Frame, error) {
	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	layers, err := r.layers(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, ErrNoFeatureTables
	}
	layer := layers[0]
	if r.Table != "" {
		found := false
		for _, l := range layers {
			if l.tablename == r.Table {
				layer, found = l, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("gpkg: feature table %q not found in %v", r.Table, r.Filepath)
		}
	}

	cols, err := tableColumns(ctx, db, layer.tablename)
	if err != nil {
		return nil, err
	}
	var (
		attrs    []column
		selected = []string{quoteIdent(layer.geomFieldname)}
	)
	for _, c := range cols {
		if c.name == layer.geomFieldname || c.name == layer.idFieldname {
			continue
		}
		attrs = append(attrs, c)
		selected = append(selected, quoteIdent(c.name))
	}
	names := make([]string, len(attrs))
	for i, c := range attrs {
		names[i] = c.name
	}

	orderBy := ""
	for _, c := range cols {
		if c.name == layer.idFieldname {
			orderBy = " ORDER BY " + quoteIdent(c.name)
		}
	}
	qtext := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(selected, ", "), quoteIdent(layer.tablename), orderBy)
	log.Debug().Str("sql", qtext).Msg("gpkg query")

	rows, err := db.QueryContext(ctx, qtext)
	if err != nil {
		return nil, fmt.Errorf("gpkg: querying %v: %w", layer.tablename, err)
	}
	defer rows.Close()

	b := frame.NewBuilder(layer.srid, names...)
	for rows.Next() {
		// check if the context cancelled or timed out
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		vals := make([]interface{}, len(selected))
		valPtrs := make([]interface{}, len(selected))
		for i := range vals {
			valPtrs[i] = &vals[i]
		}
		if err := rows.Scan(valPtrs...); err != nil {
			return nil, err
		}

		var g orb.Geometry
		if vals[0] != nil {
			geomData, ok := vals[0].([]byte)
			if !ok {
				return nil, fmt.Errorf("gpkg: unexpected column type for geom field: %T", vals[0])
			}
			if _, g, err = decodeGeometry(geomData); err != nil {
				return nil, err
			}
		}

		attrVals := make([]interface{}, len(attrs))
		for i, c := range attrs {
			attrVals[i] = sqliteValue(vals[i+1], c.declType)
		}
		if err := b.Add(g, attrVals...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug().Str("table", layer.tablename).Int("rows", b.Len()).Msg("gpkg read")
	return b.Frame()
}

func sqliteValue(v interface{}, declType string) interface{} {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case int64:
		if declType == "BOOLEAN" {
			return v != 0
		}
		return v
	}
	return frame.Normalize(v)
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// srsDefinition is the gpkg_spatial_ref_sys row for a CRS.
func srsDefinition(s crs.SRID) (name string, id int32, org string, orgID int32, def string) {
	switch s {
	case crs.Unknown:
		return "Undefined cartesian SRS", -1, "NONE", -1, "undefined"
	}
	info, err := crs.Lookup(s)
	name = s.String()
	if err == nil {
		name = info.Name
	}
	return name, int32(s), "EPSG", int32(s), "undefined"
}
