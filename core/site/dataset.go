// Package site resolves planning-dataset sites to their regulatory attributes.
//
// A dataset is a GeoJSON FeatureCollection. Each feature is one site row keyed
// by a name property and carrying area, plot ratio and height limit
// properties. The dataset is read-only once loaded and may be shared freely.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"hotel-capacity/internal/errors"
)

// Fields names the feature properties that hold site attributes
type Fields struct {
	Name      string `json:"name"`
	Area      string `json:"area"`
	PlotRatio string `json:"plot_ratio"`
	MaxHeight string `json:"max_height"`
}

// DefaultFields returns the property names used when none are configured
func DefaultFields() Fields {
	return Fields{
		Name:      "site_name",
		Area:      "site_area",
		PlotRatio: "plot_ratio",
		MaxHeight: "max_height",
	}
}

func (f Fields) withDefaults() Fields {
	d := DefaultFields()
	if f.Name == "" {
		f.Name = d.Name
	}
	if f.Area == "" {
		f.Area = d.Area
	}
	if f.PlotRatio == "" {
		f.PlotRatio = d.PlotRatio
	}
	if f.MaxHeight == "" {
		f.MaxHeight = d.MaxHeight
	}
	return f
}

// Record is one site row. Nil attributes are absent from the dataset row.
type Record struct {
	Name               string                 `json:"site_name"`
	SiteAreaSqm        *float64               `json:"site_area_sqm"`
	PlotRatio          *float64               `json:"plot_ratio"`
	MaxBuildingHeightM *float64               `json:"max_building_height_m"`
	Properties         map[string]interface{} `json:"properties,omitempty"`
	Geometry           orb.Geometry           `json:"-"`

	feature *geojson.Feature
}

// Dataset is a loaded planning dataset indexed by site name
type Dataset struct {
	source     string
	fields     Fields
	records    []Record
	names      []string
	index      map[string]int
	duplicates []string
}

// Load reads and parses the GeoJSON file at path
func Load(path string, fields Fields) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DataSource("cannot read dataset "+path, err)
	}
	return Parse(data, path, fields)
}

// Parse builds a Dataset from GeoJSON bytes. source labels the data in errors.
func Parse(data []byte, source string, fields Fields) (*Dataset, error) {
	fields = fields.withDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.DataSource("malformed GeoJSON in "+source, err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.DataSource(source+" contains no features", nil)
	}

	ds := &Dataset{
		source:  source,
		fields:  fields,
		records: make([]Record, 0, len(fc.Features)),
		index:   make(map[string]int, len(fc.Features)),
	}

	seen := map[string]bool{}
	for i, f := range fc.Features {
		rec, err := recordFromFeature(f, fields)
		if err != nil {
			return nil, errors.DataSource(fmt.Sprintf("%s: feature %d", source, i), err).
				WithContext("feature", i)
		}
		for _, key := range []string{fields.Area, fields.PlotRatio, fields.MaxHeight} {
			if _, ok := f.Properties[key]; ok {
				seen[key] = true
			}
		}

		ds.records = append(ds.records, rec)
		if _, dup := ds.index[rec.Name]; dup {
			ds.duplicates = append(ds.duplicates, rec.Name)
			continue
		}
		ds.index[rec.Name] = len(ds.records) - 1
		ds.names = append(ds.names, rec.Name)
	}

	for _, key := range []string{fields.Area, fields.PlotRatio, fields.MaxHeight} {
		if !seen[key] {
			return nil, errors.DataSource(fmt.Sprintf("%s lacks required field %q", source, key), nil).
				WithContext("field", key)
		}
	}

	return ds, nil
}

func recordFromFeature(f *geojson.Feature, fields Fields) (Record, error) {
	raw, ok := f.Properties[fields.Name]
	if !ok {
		return Record{}, fmt.Errorf("missing identifying field %q", fields.Name)
	}
	name, ok := raw.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Record{}, fmt.Errorf("field %q must be a non-empty string, got %v", fields.Name, raw)
	}

	rec := Record{
		Name:       name,
		Properties: f.Properties,
		Geometry:   f.Geometry,
		feature:    f,
	}

	var err error
	if rec.SiteAreaSqm, err = numberProperty(f.Properties, fields.Area); err != nil {
		return Record{}, err
	}
	if rec.PlotRatio, err = numberProperty(f.Properties, fields.PlotRatio); err != nil {
		return Record{}, err
	}
	if rec.MaxBuildingHeightM, err = numberProperty(f.Properties, fields.MaxHeight); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// numberProperty reads an optional numeric property. Null, absent and blank
// values are reported as nil.
func numberProperty(props geojson.Properties, key string) (*float64, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		v = f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q is not numeric: %q", key, n)
		}
		v = f
	default:
		return nil, fmt.Errorf("field %q is not numeric: %v", key, raw)
	}
	return &v, nil
}

// Source returns the location the dataset was read from
func (d *Dataset) Source() string {
	return d.source
}

// Fields returns the property names in use
func (d *Dataset) Fields() Fields {
	return d.fields
}

// Len returns the number of rows, duplicates included
func (d *Dataset) Len() int {
	return len(d.records)
}

// Names lists every distinct site name in dataset order
func (d *Dataset) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Duplicates lists the names of rows shadowed by an earlier row of the same name
func (d *Dataset) Duplicates() []string {
	out := make([]string, len(d.duplicates))
	copy(out, d.duplicates)
	return out
}

// Resolve returns the first row named name
func (d *Dataset) Resolve(name string) (Record, error) {
	i, ok := d.index[name]
	if !ok {
		return Record{}, errors.NotFound("site", name)
	}
	return d.records[i], nil
}
