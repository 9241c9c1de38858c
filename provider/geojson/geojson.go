// Package geojson reads and writes feature collections.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/crs"
	"github.com/atlasdatatech/geoframe/dict"
	"github.com/atlasdatatech/geoframe/frame"
	"github.com/atlasdatatech/geoframe/provider"
)

const Name = "geojson"

// config keys
const (
	ConfigKeyPath      = "path"
	ConfigKeySRID      = "srid"
	ConfigKeyIDField   = "id_fieldname"
	ConfigKeyTimeout   = "timeout"
	DefaultIDFieldName = "id"
	DefaultTimeout     = 30
)

func init() {
	provider.Register(Name, NewReader, NewWriter)
}

// Reader loads a FeatureCollection from a file or an http(s) URL.
type Reader struct {
	Path    string
	SRID    crs.SRID
	IDField string
	Client  *http.Client
}

func NewReader(config dict.Dicter) (provider.Reader, error) {
	path, err := config.String(ConfigKeyPath, nil)
	if err != nil {
		return nil, err
	}
	srid := 0
	if srid, err = config.Int(ConfigKeySRID, &srid); err != nil {
		return nil, err
	}
	idField := DefaultIDFieldName
	if idField, err = config.String(ConfigKeyIDField, &idField); err != nil {
		return nil, err
	}
	timeout := DefaultTimeout
	if timeout, err = config.Int(ConfigKeyTimeout, &timeout); err != nil {
		return nil, err
	}
	return &Reader{
		Path:    path,
		SRID:    crs.SRID(srid),
		IDField: idField,
		Client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}, nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (r *Reader) load(ctx context.Context) ([]byte, error) {
	if !isURL(r.Path) {
		return os.ReadFile(r.Path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Path, nil)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %v: %v", r.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (r *Reader) Read(ctx context.Context) (*frame.Frame, error) {
	data, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson: parsing %v: %w", r.Path, err)
	}

	srid := r.SRID
	if srid == crs.Unknown {
		srid = crsMember(fc.ExtraMembers)
	}
	if _, err := crs.Lookup(srid); err != nil {
		return nil, fmt.Errorf("geojson: %v: %w", r.Path, err)
	}

	cols, withID := columns(fc, r.IDField)
	floats := fractional(fc)
	b := frame.NewBuilder(srid, cols...)
	for i, f := range fc.Features {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		vals := make([]interface{}, len(cols))
		for ci, c := range cols {
			if withID && c == r.IDField {
				vals[ci] = value(f.ID, false)
				continue
			}
			vals[ci] = value(f.Properties[c], floats[c])
		}
		if err := b.Add(f.Geometry, vals...); err != nil {
			return nil, fmt.Errorf("geojson: feature %d: %w", i, err)
		}
	}

	log.Debug().Str("path", r.Path).Int("features", len(fc.Features)).Stringer("srid", srid).Msg("geojson read")
	return b.Frame()
}

// Layers reports the collection as a single layer named after the file.
func (r *Reader) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	f, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	return []provider.LayerInfo{provider.NewLayer(name, f)}, nil
}

// columns is the union of property keys in feature order. Keys new to a
// feature are added in sorted order. Feature ids become idField when no
// property already uses that name.
func columns(fc *geojson.FeatureCollection, idField string) ([]string, bool) {
	var (
		cols   []string
		seen   = make(map[string]bool)
		withID bool
	)
	for _, f := range fc.Features {
		if f.ID != nil {
			withID = true
		}
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	if withID && !seen[idField] {
		return append([]string{idField}, cols...), true
	}
	return cols, false
}

const maxExactInt = 1 << 53

// fractional marks the properties holding at least one number that is
// not an exact integer. Those columns stay float64 throughout.
func fractional(fc *geojson.FeatureCollection) map[string]bool {
	out := make(map[string]bool)
	for _, f := range fc.Features {
		for k, v := range f.Properties {
			if n, ok := v.(float64); ok && !integral(n) {
				out[k] = true
			}
		}
	}
	return out
}

func integral(v float64) bool {
	return v == math.Trunc(v) && math.Abs(v) <= maxExactInt
}

// value maps decoded JSON onto attribute values. Integral numbers become
// int64 unless asFloat is set; objects and arrays are kept as their JSON
// text.
func value(v interface{}, asFloat bool) interface{} {
	switch v := v.(type) {
	case nil, string, bool:
		return v
	case float64:
		if !asFloat && integral(v) {
			return int64(v)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

var epsgCode = regexp.MustCompile(`(?i)EPSG:{1,2}(\d+)$`)

// crsMember reads the legacy "crs" member. Collections without one are
// WGS 84 per RFC 7946.
func crsMember(extra geojson.Properties) crs.SRID {
	c, ok := extra["crs"].(map[string]interface{})
	if !ok {
		return crs.WGS84
	}
	props, _ := c["properties"].(map[string]interface{})
	name, _ := props["name"].(string)
	if strings.HasSuffix(name, "CRS84") {
		return crs.WGS84
	}
	m := epsgCode.FindStringSubmatch(name)
	if m == nil {
		return crs.WGS84
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return crs.WGS84
	}
	return crs.SRID(code)
}
