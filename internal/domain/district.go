package domain

import "context"

// District is an immutable administrative reference entity. The district
// store owns it; this package only reads it.
type District struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	NameHindi  string  `json:"nameHindi,omitempty"`
	StateCode  string  `json:"stateCode"`
	StateName  string  `json:"stateName"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int64   `json:"population,omitempty"`
}

// Location returns the district's coordinate for nearest-neighbor search.
func (d District) Location() Geo {
	return Geo{Lat: d.Latitude, Lon: d.Longitude}
}

// DistrictFilter narrows FindAll results.
type DistrictFilter struct {
	StateCode string
}

// FallbackDistricts returns the static district list served when the
// district store is unconfigured or unreachable, so the district picker
// keeps working without a database. A sample, not a census.
func FallbackDistricts(filter DistrictFilter) []District {
	all := []District{
		{ID: "fb-1", Code: "UP001", Name: "Agra", NameHindi: "आगरा", StateCode: "UP", StateName: "Uttar Pradesh", Latitude: 27.1767, Longitude: 78.0081, Population: 1746467},
		{ID: "fb-2", Code: "UP002", Name: "Aligarh", NameHindi: "अलीगढ़", StateCode: "UP", StateName: "Uttar Pradesh", Latitude: 27.8974, Longitude: 78.0880, Population: 3673849},
		{ID: "fb-3", Code: "UP003", Name: "Allahabad", NameHindi: "इलाहाबाद", StateCode: "UP", StateName: "Uttar Pradesh", Latitude: 25.4358, Longitude: 81.8463, Population: 5954391},
		{ID: "fb-4", Code: "UP004", Name: "Varanasi", NameHindi: "वाराणसी", StateCode: "UP", StateName: "Uttar Pradesh", Latitude: 25.3176, Longitude: 82.9739, Population: 3676841},
		{ID: "fb-5", Code: "UP005", Name: "Lucknow", NameHindi: "लखनऊ", StateCode: "UP", StateName: "Uttar Pradesh", Latitude: 26.8467, Longitude: 80.9462, Population: 4588455},
		{ID: "fb-6", Code: "MH001", Name: "Mumbai", NameHindi: "मुंबई", StateCode: "MH", StateName: "Maharashtra", Latitude: 19.0760, Longitude: 72.8777, Population: 12442373},
		{ID: "fb-7", Code: "MH002", Name: "Pune", NameHindi: "पुणे", StateCode: "MH", StateName: "Maharashtra", Latitude: 18.5204, Longitude: 73.8567, Population: 9429408},
		{ID: "fb-8", Code: "BR001", Name: "Patna", NameHindi: "पटना", StateCode: "BR", StateName: "Bihar", Latitude: 25.5941, Longitude: 85.1376, Population: 5838465},
		{ID: "fb-9", Code: "BR002", Name: "Gaya", NameHindi: "गया", StateCode: "BR", StateName: "Bihar", Latitude: 24.7955, Longitude: 84.9994, Population: 4391418},
		{ID: "fb-10", Code: "WB001", Name: "Kolkata", NameHindi: "कोलकाता", StateCode: "WB", StateName: "West Bengal", Latitude: 22.5726, Longitude: 88.3639, Population: 14112536},
	}
	if filter.StateCode == "" {
		return all
	}
	matched := make([]District, 0, len(all))
	for _, d := range all {
		if d.StateCode == filter.StateCode {
			matched = append(matched, d)
		}
	}
	return matched
}

// DistrictStore provides read access to district reference data. The
// resolution pipeline must tolerate it being unreachable and degrade
// rather than fail.
type DistrictStore interface {
	// FindByID returns the district with the given ID, or (nil, nil) when
	// no such district exists.
	FindByID(ctx context.Context, id string) (*District, error)

	// FindAll returns districts matching the filter, in stable order.
	FindAll(ctx context.Context, filter DistrictFilter) ([]District, error)
}
