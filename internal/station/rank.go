package station

import (
	"math"
	"sort"
)

const (
	EarthRadiusKm = 6371.0

	// DefaultNeighbors is how many nearest stations are highlighted around a target.
	DefaultNeighbors = 10
)

// Neighbor is a ranked station.
type Neighbor struct {
	Station    Station `json:"station"`
	DistanceKm float64 `json:"distance_km"`
	// PriceDelta is Station.Price minus the target price, when both are known.
	PriceDelta *float64 `json:"price_delta,omitempty"`
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	x := math.Pow(math.Sin(dLat/2), 2) + math.Pow(math.Sin(dLng/2), 2)*math.Cos(lat1)*math.Cos(lat2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(x), math.Sqrt(1-x))
}

// Nearest returns the k candidates closest to target, excluding target itself.
// Equal distances keep the candidates order.
func Nearest(target Station, candidates []Station, k int) []Neighbor {
	others := make([]Station, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		others = append(others, c)
	}

	ranked := rank(target.Point(), others, k)
	if target.Price == nil {
		return ranked
	}
	for i := range ranked {
		if p := ranked[i].Station.Price; p != nil {
			delta := *p - *target.Price
			ranked[i].PriceDelta = &delta
		}
	}
	return ranked
}

// NearestTo resolves id in stations and ranks around it. It returns nil when
// there is no such station.
func NearestTo(id string, stations []Station, k int) []Neighbor {
	target, ok := Target(stations, id)
	if !ok {
		return nil
	}
	return Nearest(target, stations, k)
}

// NearestPoint ranks candidates around an arbitrary point.
func NearestPoint(p Point, candidates []Station, k int) []Neighbor {
	return rank(p, candidates, k)
}

func rank(from Point, candidates []Station, k int) []Neighbor {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	ranked := make([]Neighbor, len(candidates))
	for i, c := range candidates {
		ranked[i] = Neighbor{Station: c, DistanceKm: Haversine(from, c.Point())}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
