package query

import "github.com/jobrunner/mlitdpf/internal/domain"

// AttributeFilter composes the attributeFilter argument value from
// candidate conditions. Candidates with blank values are dropped. A single
// survivor is emitted bare; two or more are wrapped in an AND list that
// keeps the candidate order. It reports false when nothing survives.
func AttributeFilter(candidates []domain.AttributeCondition) (Value, bool) {
	conds := make([]Value, 0, len(candidates))
	for _, c := range candidates {
		if c.IsEmpty() {
			continue
		}
		conds = append(conds, Object{
			{Name: "attributeName", Value: String(c.Name)},
			{Name: "is", Value: String(c.Value)},
		})
	}

	switch len(conds) {
	case 0:
		return nil, false
	case 1:
		return conds[0], true
	default:
		return Object{{Name: "AND", Value: List(conds)}}, true
	}
}

// LocationFilter composes the locationFilter argument value. It reports
// false for a nil filter.
func LocationFilter(f domain.LocationFilter) (Value, bool) {
	switch v := f.(type) {
	case domain.Rectangle:
		return Object{{Name: "rectangle", Value: Object{
			{Name: "topLeft", Value: point(v.TopLeft)},
			{Name: "bottomRight", Value: point(v.BottomRight)},
		}}}, true
	case *domain.Rectangle:
		if v == nil {
			return nil, false
		}
		return LocationFilter(*v)
	case domain.PointDistance:
		return Object{{Name: "geoDistance", Value: Object{
			{Name: "lat", Value: Float(v.Center.Lat)},
			{Name: "lon", Value: Float(v.Center.Lon)},
			{Name: "distance", Value: Float(v.Distance)},
		}}}, true
	case *domain.PointDistance:
		if v == nil {
			return nil, false
		}
		return LocationFilter(*v)
	default:
		return nil, false
	}
}

func point(p domain.Point) Object {
	return Object{
		{Name: "lat", Value: Float(p.Lat)},
		{Name: "lon", Value: Float(p.Lon)},
	}
}
