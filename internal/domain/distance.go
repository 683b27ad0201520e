package domain

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Geo is a WGS-84 latitude/longitude coordinate pair in degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers. Inputs are not range-validated here; that is the caller's
// responsibility.
func HaversineKm(a, b Geo) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Locatable is anything exposing a coordinate for nearest-neighbor search.
type Locatable interface {
	Location() Geo
}

// Nearest returns the candidate closest to query plus its distance in
// kilometers. Ties go to the first occurrence in input order. Returns
// ok=false on an empty candidate list; callers must branch on it. Linear
// scan: candidate sets are tens to low hundreds of entries.
func Nearest[T Locatable](query Geo, candidates []T) (nearest T, distanceKm float64, ok bool) {
	if len(candidates) == 0 {
		return nearest, 0, false
	}

	nearest = candidates[0]
	distanceKm = HaversineKm(query, candidates[0].Location())
	for _, c := range candidates[1:] {
		if d := HaversineKm(query, c.Location()); d < distanceKm {
			nearest = c
			distanceKm = d
		}
	}
	return nearest, distanceKm, true
}

// FallbackCity is a major-city reference point used for nearest-district
// detection only when the district store is unreachable.
type FallbackCity struct {
	Name      string  `json:"name"`
	StateName string  `json:"stateName"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c FallbackCity) Location() Geo {
	return Geo{Lat: c.Latitude, Lon: c.Longitude}
}

// FallbackCities returns the hardcoded degraded-mode candidate set.
func FallbackCities() []FallbackCity {
	return []FallbackCity{
		{Name: "Mumbai", StateName: "Maharashtra", Latitude: 19.0760, Longitude: 72.8777},
		{Name: "Delhi", StateName: "Delhi", Latitude: 28.6139, Longitude: 77.2090},
		{Name: "Bengaluru", StateName: "Karnataka", Latitude: 12.9716, Longitude: 77.5946},
		{Name: "Hyderabad", StateName: "Telangana", Latitude: 17.3850, Longitude: 78.4867},
		{Name: "Chennai", StateName: "Tamil Nadu", Latitude: 13.0827, Longitude: 80.2707},
		{Name: "Kolkata", StateName: "West Bengal", Latitude: 22.5726, Longitude: 88.3639},
		{Name: "Pune", StateName: "Maharashtra", Latitude: 18.5204, Longitude: 73.8567},
		{Name: "Ahmedabad", StateName: "Gujarat", Latitude: 23.0225, Longitude: 72.5714},
	}
}
