package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	patna = Geo{Lat: 25.5941, Lon: 85.1376}
	gaya  = Geo{Lat: 24.7955, Lon: 84.9994}
	delhi = Geo{Lat: 28.6139, Lon: 77.2090}
)

func TestHaversineKm_IdenticalCoordinates(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(patna, patna), 1e-6)
}

func TestHaversineKm_Symmetric(t *testing.T) {
	assert.InDelta(t, HaversineKm(patna, delhi), HaversineKm(delhi, patna), 1e-9)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Patna to Gaya is roughly 90 km as the crow flies.
	d := HaversineKm(patna, gaya)
	assert.InDelta(t, 90, d, 10)
}

func TestNearest_EmptyCandidates(t *testing.T) {
	_, _, ok := Nearest(patna, []District{})
	assert.False(t, ok)
}

func TestNearest_Singleton(t *testing.T) {
	cities := []FallbackCity{{Name: "Delhi", Latitude: delhi.Lat, Longitude: delhi.Lon}}

	nearest, dist, ok := Nearest(patna, cities)
	require.True(t, ok)
	assert.Equal(t, "Delhi", nearest.Name)
	assert.InDelta(t, HaversineKm(patna, delhi), dist, 1e-9)
}

func TestNearest_ExactMatchCandidate(t *testing.T) {
	cities := FallbackCities()
	query := Geo{Lat: 22.5726, Lon: 88.3639} // Kolkata's own coordinate

	nearest, dist, ok := Nearest(query, cities)
	require.True(t, ok)
	assert.Equal(t, "Kolkata", nearest.Name)
	assert.InDelta(t, 0, dist, 1e-6)
}

func TestNearest_TieGoesToFirstOccurrence(t *testing.T) {
	twin := []FallbackCity{
		{Name: "first", Latitude: 20, Longitude: 80},
		{Name: "second", Latitude: 20, Longitude: 80},
	}

	nearest, _, ok := Nearest(Geo{Lat: 21, Lon: 81}, twin)
	require.True(t, ok)
	assert.Equal(t, "first", nearest.Name)
}

func TestNearest_PicksMinimum(t *testing.T) {
	districts := []District{
		{Name: "far", Latitude: 10, Longitude: 70},
		{Name: "near", Latitude: 25.5, Longitude: 85.1},
		{Name: "farther", Latitude: 33, Longitude: 95},
	}

	nearest, dist, ok := Nearest(patna, districts)
	require.True(t, ok)
	assert.Equal(t, "near", nearest.Name)
	assert.Less(t, dist, 25.0)
}
