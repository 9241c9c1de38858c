// Package crs names the coordinate reference systems a frame can carry and
// moves geometries between them.
package crs

import (
	"errors"
	"fmt"
)

// SRID is a spatial reference identifier (an EPSG code). The zero value
// means the coordinate system is not known.
type SRID int

const (
	Unknown                     SRID = 0
	WGS84                       SRID = 4326
	WebMercator                 SRID = 3857
	WorldMercator               SRID = 3395
	WorldEquidistantCylindrical SRID = 4087
)

var (
	// ErrUnknown is returned when an operation needs a CRS and the input
	// has none.
	ErrUnknown = errors.New("crs: coordinate reference system is not set")
	// ErrMismatch is returned when two inputs of a binary operation are
	// in different coordinate reference systems.
	ErrMismatch = errors.New("crs: coordinate reference systems differ")
	// ErrAlreadySet is returned when assigning a CRS to data that already
	// has a different one. Use a transform instead.
	ErrAlreadySet = errors.New("crs: coordinate reference system already set")
	// ErrUnsupported is returned for EPSG codes outside the registry.
	ErrUnsupported = errors.New("crs: unsupported EPSG code")
)

// Kind tells geographic (degrees) and projected (metres) systems apart.
type Kind int

const (
	Geographic Kind = iota + 1
	Projected
)

func (k Kind) String() string {
	switch k {
	case Geographic:
		return "geographic"
	case Projected:
		return "projected"
	}
	return "unknown"
}

// Info describes a registered coordinate reference system.
type Info struct {
	SRID SRID
	Name string
	Kind Kind
	// Units of the coordinates.
	Units string
}

var registry = map[SRID]Info{
	WGS84:                       {SRID: WGS84, Name: "WGS 84", Kind: Geographic, Units: "degree"},
	WebMercator:                 {SRID: WebMercator, Name: "WGS 84 / Pseudo-Mercator", Kind: Projected, Units: "metre"},
	WorldMercator:               {SRID: WorldMercator, Name: "WGS 84 / World Mercator", Kind: Projected, Units: "metre"},
	WorldEquidistantCylindrical: {SRID: WorldEquidistantCylindrical, Name: "WGS 84 / World Equidistant Cylindrical", Kind: Projected, Units: "metre"},
}

// Lookup returns the registry entry for srid.
func Lookup(srid SRID) (Info, error) {
	if srid == Unknown {
		return Info{}, ErrUnknown
	}
	info, ok := registry[srid]
	if !ok {
		return Info{}, fmt.Errorf("%w: EPSG:%d", ErrUnsupported, int(srid))
	}
	return info, nil
}

// Supported lists the registered codes.
func Supported() []SRID {
	return []SRID{WGS84, WebMercator, WorldMercator, WorldEquidistantCylindrical}
}

func (s SRID) String() string {
	if s == Unknown {
		return "unknown"
	}
	return fmt.Sprintf("EPSG:%d", int(s))
}

// IsGeographic reports whether coordinates in s are longitude/latitude.
func (s SRID) IsGeographic() bool {
	info, err := Lookup(s)
	return err == nil && info.Kind == Geographic
}

// RequireSame checks the precondition of every binary geometric operation.
func RequireSame(a, b SRID) error {
	if a == Unknown || b == Unknown {
		return ErrUnknown
	}
	if a != b {
		return fmt.Errorf("%w: %v and %v", ErrMismatch, a, b)
	}
	return nil
}
