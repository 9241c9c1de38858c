// Package postgis reads feature tables, or the rows of a query, from a
// PostGIS database. Geometries are fetched as WKB.
package postgis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

const Name = "postgis"

// config keys
const (
	ConfigKeyURI       = "uri"
	ConfigKeyHost      = "host"
	ConfigKeyPort      = "port"
	ConfigKeyDB        = "database"
	ConfigKeyUser      = "user"
	ConfigKeyPassword  = "password"
	ConfigKeyMaxConn   = "max_connections"
	ConfigKeyTablename = "tablename"
	ConfigKeySQL       = "sql"
	ConfigKeyGeomField = "geometry_fieldname"
	ConfigKeyFields    = "fields"
	ConfigKeySRID      = "srid"
)

const (
	DefaultPort      = 5432
	DefaultMaxConn   = 5
	DefaultGeomField = "geom"
)

// geomAlias names the WKB column so it cannot clash with table fields.
const geomAlias = "__geoframe_wkb"

var ErrSource = errors.New("postgis: exactly one of tablename or sql is required")

func init() {
	provider.Register(Name, NewReader, nil)
}

type Reader struct {
	Tablename string
	SQL       string
	GeomField string
	// Fields limits the attribute columns. Empty means every column.
	Fields []string
	// SRID overrides the srid stored with the geometries.
	SRID crs.SRID

	pool pgx.ConnPoolConfig
}

func NewReader(config dict.Dicter) (provider.Reader, error) {
	var (
		r   Reader
		err error

		empty     string
		geomField = DefaultGeomField
		srid      = 0
		maxConn   = DefaultMaxConn
	)
	if r.pool.ConnConfig, err = connConfig(config); err != nil {
		return nil, err
	}
	if r.pool.MaxConnections, err = config.Int(ConfigKeyMaxConn, &maxConn); err != nil {
		return nil, err
	}
	if r.Tablename, err = config.String(ConfigKeyTablename, &empty); err != nil {
		return nil, err
	}
	if r.SQL, err = config.String(ConfigKeySQL, &empty); err != nil {
		return nil, err
	}
	if (r.Tablename == "") == (r.SQL == "") {
		return nil, ErrSource
	}
	if r.GeomField, err = config.String(ConfigKeyGeomField, &geomField); err != nil {
		return nil, err
	}
	if r.Fields, err = config.StringSlice(ConfigKeyFields); err != nil {
		return nil, err
	}
	if srid, err = config.Int(ConfigKeySRID, &srid); err != nil {
		return nil, err
	}
	r.SRID = crs.SRID(srid)
	if r.SRID != crs.Unknown {
		if _, err := crs.Lookup(r.SRID); err != nil {
			return nil, fmt.Errorf("postgis: %w", err)
		}
	}
	return &r, nil
}

func connConfig(config dict.Dicter) (pgx.ConnConfig, error) {
	var (
		empty string
		port  = DefaultPort
	)
	uri, err := config.String(ConfigKeyURI, &empty)
	if err != nil {
		return pgx.ConnConfig{}, err
	}
	if uri != "" {
		cc, err := pgx.ParseURI(uri)
		if err != nil {
			return pgx.ConnConfig{}, fmt.Errorf("postgis: %v: %w", ConfigKeyURI, err)
		}
		return cc, nil
	}

	var cc pgx.ConnConfig
	if cc.Host, err = config.String(ConfigKeyHost, nil); err != nil {
		return cc, err
	}
	if port, err = config.Int(ConfigKeyPort, &port); err != nil {
		return cc, err
	}
	cc.Port = uint16(port)
	if cc.Database, err = config.String(ConfigKeyDB, nil); err != nil {
		return cc, err
	}
	if cc.User, err = config.String(ConfigKeyUser, nil); err != nil {
		return cc, err
	}
	if cc.Password, err = config.String(ConfigKeyPassword, &empty); err != nil {
		return cc, err
	}
	return cc, nil
}

// from is the relation the query reads, aliased q.
func (r *Reader) from() string {
	if r.SQL != "" {
		return "(" + strings.TrimRight(strings.TrimSpace(r.SQL), ";") + ") AS q"
	}
	return pgx.Identifier(strings.Split(r.Tablename, ".")).Sanitize() + " AS q"
}

func (r *Reader) geom() string {
	return "q." + pgx.Identifier{r.GeomField}.Sanitize()
}

func (r *Reader) selectSQL() string {
	cols := "q.*"
	if len(r.Fields) > 0 {
		quoted := make([]string, len(r.Fields))
		for i, f := range r.Fields {
			quoted[i] = "q." + pgx.Identifier{f}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}
	return fmt.Sprintf("SELECT ST_AsBinary(%s) AS %s, %s FROM %s", r.geom(), geomAlias, cols, r.from())
}

func (r *Reader) sridSQL() string {
	return fmt.Sprintf("SELECT ST_SRID(%s) FROM %s WHERE %s IS NOT NULL LIMIT 1", r.geom(), r.from(), r.geom())
}

func (r *Reader) Read(ctx context.Context) (*frame.Frame, error) {
	pool, err := pgx.NewConnPool(r.pool)
	if err != nil {
		return nil, fmt.Errorf("postgis: connecting: %w", err)
	}
	defer pool.Close()

	srid := r.SRID
	if srid == crs.Unknown {
		var stored int
		err := pool.QueryRowEx(ctx, r.sridSQL(), nil).Scan(&stored)
		switch {
		case err == pgx.ErrNoRows:
		case err != nil:
			return nil, fmt.Errorf("postgis: reading srid: %w", err)
		default:
			srid = crs.SRID(stored)
		}
	}

	rows, err := pool.QueryEx(ctx, r.selectSQL(), nil)
	if err != nil {
		return nil, fmt.Errorf("postgis: %w", err)
	}
	defer rows.Close()

	var (
		cols []string
		idx  []int
	)
	for i, fd := range rows.FieldDescriptions() {
		if i == 0 || fd.Name == r.GeomField {
			continue
		}
		cols = append(cols, fd.Name)
		idx = append(idx, i)
	}
	b := frame.NewBuilder(srid, cols...)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgis: row %d: %w", b.Len(), err)
		}
		var g orb.Geometry
		if raw, ok := vals[0].([]byte); ok && len(raw) > 0 {
			if g, err = wkb.Unmarshal(raw); err != nil {
				return nil, fmt.Errorf("postgis: row %d geometry: %w", b.Len(), err)
			}
		}
		row := make([]interface{}, len(idx))
		for n, i := range idx {
			row[n] = vals[i]
		}
		if err := b.Add(g, row...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgis: %w", err)
	}
	log.Debug().Str("from", r.from()).Int("rows", b.Len()).Stringer("srid", srid).Msg("postgis read")
	return b.Frame()
}

// Layers reports the table or query as one layer.
func (r *Reader) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	f, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	name := r.Tablename
	if name == "" {
		name = "sql"
	}
	return []provider.LayerInfo{provider.NewLayer(name, f)}, nil
}
