//go:build cgo
// +build cgo

package gpkg

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

// Writer creates a new GeoPackage holding one feature table. An existing
// file at Filepath is replaced.
type Writer struct {
	Filepath string
	Table    string
}

func NewWriter(config dict.Dicter) (provider.Writer, error) {
	path, err := config.String(ConfigKeyFilePath, nil)
	if err != nil {
		return nil, err
	}
	table := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if table, err = config.String(ConfigKeyTableName, &table); err != nil {
		return nil, err
	}
	return &Writer{Filepath: path, Table: table}, nil
}

const schema = `
CREATE TABLE gpkg_spatial_ref_sys (
	srs_name TEXT NOT NULL,
	srs_id INTEGER NOT NULL PRIMARY KEY,
	organization TEXT NOT NULL,
	organization_coordsys_id INTEGER NOT NULL,
	definition TEXT NOT NULL,
	description TEXT
);
CREATE TABLE gpkg_contents (
	table_name TEXT NOT NULL PRIMARY KEY,
	data_type TEXT NOT NULL,
	identifier TEXT UNIQUE,
	description TEXT DEFAULT '',
	last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
	srs_id INTEGER,
	CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
);
CREATE TABLE gpkg_geometry_columns (
	table_name TEXT NOT NULL,
	column_name TEXT NOT NULL,
	geometry_type_name TEXT NOT NULL,
	srs_id INTEGER NOT NULL,
	z TINYINT NOT NULL,
	m TINYINT NOT NULL,
	CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name),
	CONSTRAINT fk_gc_tn FOREIGN KEY (table_name) REFERENCES gpkg_contents(table_name),
	CONSTRAINT fk_gc_srs FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys (srs_id)
);
PRAGMA application_id = 1196444487;
PRAGMA user_version = 10200;
`

func (w *Writer) Write(ctx context.Context, f *frame.Frame) error {
	if err := os.MkdirAll(filepath.Dir(w.Filepath), 0o755); err != nil {
		return err
	}
	if err := os.Remove(w.Filepath); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open("sqlite3", w.Filepath)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := w.write(ctx, tx, f); err != nil {
		tx.Rollback()
		return fmt.Errorf("gpkg: writing %v: %w", w.Filepath, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug().Str("path", w.Filepath).Str("table", w.Table).Int("rows", f.Len()).Msg("gpkg written")
	return nil
}

func (w *Writer) write(ctx context.Context, tx *sql.Tx, f *frame.Frame) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}

	srs := []crs.SRID{crs.Unknown, crs.WGS84}
	if f.SRID() != crs.Unknown && f.SRID() != crs.WGS84 {
		srs = append(srs, f.SRID())
	}
	for _, s := range srs {
		name, id, org, orgID, def := srsDefinition(s)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition) VALUES (?, ?, ?, ?, ?)`,
			name, id, org, orgID, def,
		); err != nil {
			return err
		}
	}
	// the undefined geographic system is required as well
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition) VALUES ('Undefined geographic SRS', 0, 'NONE', 0, 'undefined')`,
	); err != nil {
		return err
	}

	cols := f.Columns()
	defs := []string{quoteIdent(DefaultIDFieldName) + " INTEGER PRIMARY KEY AUTOINCREMENT", quoteIdent(DefaultGeomFieldName) + " " + geometryTypeName(f)}
	for _, c := range cols {
		if c == DefaultIDFieldName || c == DefaultGeomFieldName {
			return fmt.Errorf("column %q is reserved", c)
		}
		defs = append(defs, quoteIdent(c)+" "+columnType(f, c))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(w.Table), strings.Join(defs, ", "))); err != nil {
		return err
	}

	b := f.Bound()
	srsid := srsFromSRID(f.SRID())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id) VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`,
		w.Table, w.Table, b.Min[0], b.Min[1], b.Max[0], b.Max[1], srsid,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m) VALUES (?, ?, ?, ?, 0, 0)`,
		w.Table, DefaultGeomFieldName, geometryTypeName(f), srsid,
	); err != nil {
		return err
	}

	names := []string{quoteIdent(DefaultGeomFieldName)}
	marks := []string{"?"}
	for _, c := range cols {
		names = append(names, quoteIdent(c))
		marks = append(marks, "?")
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(w.Table), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	return f.Each(func(r frame.Record) error {
		blob, err := encodeGeometry(r.Geometry(), srsid)
		if err != nil {
			return fmt.Errorf("row %d: %w", r.Index(), err)
		}
		args := append([]interface{}{blob}, r.Values()...)
		_, err = stmt.ExecContext(ctx, args...)
		return err
	})
}

func encodeGeometry(g orb.Geometry, srsid int32) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	body, err := wkb.Marshal(g)
	if err != nil {
		return nil, err
	}
	b := g.Bound()
	return append(encodeHeader(srsid, b.Min[0], b.Max[0], b.Min[1], b.Max[1], false), body...), nil
}

// geometryTypeName is the single OGC type of every geometry in f, or
// GEOMETRY when they differ.
func geometryTypeName(f *frame.Frame) string {
	name := ""
	for i := 0; i < f.Len(); i++ {
		g := f.Geometry(i)
		if g == nil {
			continue
		}
		n := provider.GeomTypeName(provider.GeomTypeOf(g))
		if name != "" && n != name {
			return "GEOMETRY"
		}
		name = n
	}
	if name == "" {
		return "GEOMETRY"
	}
	return name
}

func columnType(f *frame.Frame, col string) string {
	vals, _ := f.Column(col)
	typ := ""
	for _, v := range vals {
		var t string
		switch v.(type) {
		case nil:
			continue
		case int64:
			t = "INTEGER"
		case float64:
			t = "REAL"
		case bool:
			t = "BOOLEAN"
		default:
			t = "TEXT"
		}
		switch {
		case typ == "":
			typ = t
		case typ == t:
		case (typ == "INTEGER" && t == "REAL") || (typ == "REAL" && t == "INTEGER"):
			typ = "REAL"
		default:
			return "TEXT"
		}
	}
	if typ == "" {
		return "TEXT"
	}
	return typ
}
