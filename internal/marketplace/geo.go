package marketplace

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dukapilot/biashara360/internal/apperr"
)

const earthRadiusKm = 6371

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Rank annotates each listing with its distance from (lat, lng) and sorts
// ascending. Listings without a business location keep their relative
// order after every located one.
func Rank(ls []Listing, lat, lng float64) {
	for i := range ls {
		b := ls[i].Business
		if b.LocationLat == nil || b.LocationLng == nil {
			ls[i].Distance = nil
			continue
		}
		d := Haversine(lat, lng, *b.LocationLat, *b.LocationLng)
		ls[i].Distance = &d
	}
	sort.SliceStable(ls, func(i, j int) bool {
		di, dj := ls[i].Distance, ls[j].Distance
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
}

// ParseQuery builds a Query from raw query-string values. A coordinate is
// used only when both lat and lng are present.
func ParseQuery(search, category, lat, lng string) (Query, error) {
	q := Query{Search: strings.TrimSpace(search), Category: strings.TrimSpace(category)}
	if lat == "" || lng == "" {
		return q, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || math.IsNaN(la) || la < -90 || la > 90 {
		return Query{}, apperr.Validation("lat must be a number between -90 and 90")
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil || math.IsNaN(lo) || lo < -180 || lo > 180 {
		return Query{}, apperr.Validation("lng must be a number between -180 and 180")
	}
	q.Lat, q.Lng = &la, &lo
	return q, nil
}
