// Package gpkg reads and writes GeoPackage feature tables. Geometry blobs
// are the GeoPackage binary header followed by WKB.
//
// The provider needs cgo for mattn/go-sqlite3 and registers itself only
// in cgo builds.
package gpkg
