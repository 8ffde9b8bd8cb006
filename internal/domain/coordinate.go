// Package domain contains the core business entities and value objects.
package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Coordinate bounds for WGS84 latitude/longitude pairs.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies inside the WGS84 range. The label
// names the point in the error message ("top left" yields
// "Invalid top left latitude value").
func (p Point) Validate(label string) error {
	if math.IsNaN(p.Lat) || p.Lat < MinLatitude || p.Lat > MaxLatitude {
		return coordinateError(label, "latitude", p.Lat, "[-90, 90]")
	}
	if math.IsNaN(p.Lon) || p.Lon < MinLongitude || p.Lon > MaxLongitude {
		return coordinateError(label, "longitude", p.Lon, "[-180, 180]")
	}
	return nil
}

// String returns a string representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", formatDegrees(p.Lat), formatDegrees(p.Lon))
}

func coordinateError(label, axis string, value float64, constraint string) *ValidationError {
	field := axis
	if label != "" {
		field = label + " " + axis
	}
	return &ValidationError{
		Field:      field,
		Value:      value,
		Constraint: constraint,
		Message:    fmt.Sprintf("Invalid %s value", field),
		kind:       ErrInvalidCoordinate,
	}
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LocationFilter is a geographic constraint on a search. The set of
// implementations is closed: Rectangle and PointDistance. A nil
// LocationFilter means no location constraint.
type LocationFilter interface {
	Validate() error
	isLocationFilter()
}

// Rectangle selects records inside a bounding box.
type Rectangle struct {
	TopLeft     Point
	BottomRight Point
}

// Validate checks both corners.
func (r Rectangle) Validate() error {
	if err := r.TopLeft.Validate("top left"); err != nil {
		return err
	}
	return r.BottomRight.Validate("bottom right")
}

func (Rectangle) isLocationFilter() {}

// PointDistance selects records within Distance of Center.
type PointDistance struct {
	Center   Point
	Distance float64
}

// Validate checks the center and the distance.
func (p PointDistance) Validate() error {
	if err := p.Center.Validate(""); err != nil {
		return err
	}
	if math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0) || p.Distance < 0 {
		return &ValidationError{
			Field:      "distance",
			Value:      p.Distance,
			Constraint: ">= 0",
			Message:    "Invalid distance value",
		}
	}
	return nil
}

func (PointDistance) isLocationFilter() {}
