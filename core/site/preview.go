package site

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"

	"hotel-capacity/internal/errors"
)

// Preview is the data a map view needs to show one site
type Preview struct {
	Name   string    `json:"site_name"`
	Bound  orb.Bound `json:"-"`
	Center orb.Point `json:"center"`

	// GeodesicAreaSqm is the footprint area computed from the geometry,
	// for display next to the dataset's own area attribute.
	GeodesicAreaSqm float64 `json:"geodesic_area_sqm"`

	Feature *geojson.Feature `json:"feature"`
}

// Preview builds the map preview of the named site
func (d *Dataset) Preview(name string) (*Preview, error) {
	rec, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	if rec.Geometry == nil {
		return nil, errors.DataSource("site "+name+" has no geometry", nil).WithContext("site", name)
	}

	bound := rec.Geometry.Bound()
	return &Preview{
		Name:            rec.Name,
		Bound:           bound,
		Center:          bound.Center(),
		GeodesicAreaSqm: math.Abs(geo.Area(rec.Geometry)),
		Feature:         rec.feature,
	}, nil
}

// BBox returns the bounding box as [minLon, minLat, maxLon, maxLat]
func (p *Preview) BBox() geojson.BBox {
	return geojson.NewBBox(p.Bound)
}

// FeatureCollection wraps the site feature in a collection carrying its bbox
func (p *Preview) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BBox = p.BBox()
	fc.Append(p.Feature)
	return fc
}
