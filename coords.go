package wikicorpus

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoCoordFound means the article carries no parseable {{coord}}
// transclusion.
var ErrNoCoordFound = errors.New("no coord data found")

var errNotSexagesimal = errors.New("not a sexagesimal value")

// Coord is a geographical position pulled from an article.
type Coord struct {
	Lon float64
	Lat float64
}

// ParseCoords finds the first {{coord|...}} transclusion in an article
// body and parses it, per
// http://en.wikipedia.org/wiki/Wikipedia:WikiProject_Geographical_coordinates
// Both decimal and degrees/minutes/seconds forms are understood; named
// arguments like display= are ignored.
func ParseCoords(text string) (Coord, error) {
	doc, err := ParseDocument(text, DefaultMaxTemplateDepth)
	if err != nil {
		return Coord{}, ErrNoCoordFound
	}
	for _, sec := range doc.Flat() {
		if tpl := firstCoordTemplate(sec.Body); tpl != nil {
			return coordFromTemplate(tpl)
		}
	}
	return Coord{}, ErrNoCoordFound
}

// firstCoordTemplate walks the tree in document order.  nowiki bodies
// are display-only and never transcluded, so they are not descended.
func firstCoordTemplate(nodes []Node) *Template {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Template:
			if strings.EqualFold(strings.TrimSpace(v.Name), "coord") {
				return v
			}
			for _, p := range v.Params {
				if t := firstCoordTemplate(p.Value); t != nil {
					return t
				}
			}
		case *Tag:
			if v.Name == "nowiki" {
				continue
			}
			if t := firstCoordTemplate(v.Children); t != nil {
				return t
			}
		case *Heading:
			if t := firstCoordTemplate(v.Children); t != nil {
				return t
			}
		}
	}
	return nil
}

func coordFromTemplate(tpl *Template) (Coord, error) {
	var parts []string
	for _, p := range tpl.Params {
		if p.Name != "" {
			continue
		}
		var sb strings.Builder
		flattenNodes(p.Value, &sb)
		parts = append(parts, strings.TrimSpace(sb.String()))
	}

	// Skip leading non-numeric arguments.
	for len(parts) > 0 {
		if _, err := strconv.ParseFloat(parts[0], 64); err == nil {
			break
		}
		parts = parts[1:]
	}

	rv, err := parseSexagesimal(parts)
	if err != nil {
		rv, err = parseDecimal(parts)
	}
	if err != nil {
		return Coord{}, err
	}
	if math.Abs(rv.Lat) > 90 {
		return Coord{}, fmt.Errorf("invalid latitude: %v", rv.Lat)
	}
	if math.Abs(rv.Lon) > 180 {
		return Coord{}, fmt.Errorf("invalid longitude: %v", rv.Lon)
	}
	return rv, nil
}

func dms(parts []string) (float64, error) {
	rv := 0.0
	for i, div := range []float64{1, 60, 3600} {
		f, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return 0, err
		}
		rv += f / div
	}
	if parts[3] == "S" || parts[3] == "W" {
		rv = -rv
	}
	return rv, nil
}

func parseSexagesimal(parts []string) (Coord, error) {
	if len(parts) < 8 {
		return Coord{}, errNotSexagesimal
	}
	if parts[3] != "N" && parts[3] != "S" {
		return Coord{}, errNotSexagesimal
	}
	if parts[7] != "E" && parts[7] != "W" {
		return Coord{}, errNotSexagesimal
	}

	lat, err := dms(parts[0:4])
	if err != nil {
		return Coord{}, err
	}
	lon, err := dms(parts[4:8])
	if err != nil {
		return Coord{}, err
	}
	return Coord{Lat: lat, Lon: lon}, nil
}

func parseDecimal(parts []string) (Coord, error) {
	if len(parts) < 2 {
		return Coord{}, ErrNoCoordFound
	}

	rv := Coord{}
	offset := 0
	var err error
	rv.Lat, err = strconv.ParseFloat(parts[offset], 64)
	if err != nil {
		return Coord{}, err
	}
	offset++

	if parts[offset] == "S" {
		rv.Lat = -rv.Lat
		offset++
	} else if parts[offset] == "N" {
		offset++
	}
	if offset >= len(parts) {
		return Coord{}, ErrNoCoordFound
	}

	rv.Lon, err = strconv.ParseFloat(parts[offset], 64)
	if err != nil {
		return Coord{}, err
	}
	offset++
	if offset < len(parts) && parts[offset] == "W" {
		rv.Lon = -rv.Lon
	}
	return rv, nil
}
