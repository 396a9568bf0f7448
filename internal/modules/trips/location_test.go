package trips

import (
	"testing"

	"voyage-trips/internal/models"
)

func placeTrip() *models.StandardItinerary {
	return &models.StandardItinerary{
		TripMeta: models.TripMeta{TripType: models.TripTypePlace, Country: "France", City: "Paris"},
	}
}

func TestReconstructLocationPrefersSnapshot(t *testing.T) {
	it := placeTrip()
	it.OriginalPlaceData = &models.LocationQuery{
		Type:        models.TripTypePlace,
		Coordinates: &models.LatLong{Latitude: 48.8566, Longitude: 2.3522},
		PlaceName:   "Paris",
	}
	// Coordinates and activities present too; the snapshot still wins.
	it.StoredCoordinates = models.StoredCoordinates{Place: &models.LatLong{Latitude: 1, Longitude: 1}}

	query, source := ReconstructLocation(it)
	if source != SourceSnapshot {
		t.Fatalf("source = %v; want snapshot", source)
	}
	if query.PlaceName != "Paris" || query.Coordinates.Latitude != 48.8566 {
		t.Errorf("query = %+v; want the snapshot verbatim", query)
	}
}

func TestReconstructLocationFromStoredCoordinates(t *testing.T) {
	it := placeTrip()
	it.StoredCoordinates = models.StoredCoordinates{Place: &models.LatLong{Latitude: 48.8566, Longitude: 2.3522}}

	query, source := ReconstructLocation(it)
	if source != SourceStoredCoordinates {
		t.Fatalf("source = %v; want stored-coordinates", source)
	}
	if query.Type != models.TripTypePlace || query.Coordinates.Latitude != 48.8566 {
		t.Errorf("query = %+v; want a place query on the stored coordinate", query)
	}
	// Name synthesized from regional metadata, city first.
	if query.PlaceName != "Paris" {
		t.Errorf("PlaceName = %q; want Paris", query.PlaceName)
	}
}

func TestReconstructZoneDefaultsRadius(t *testing.T) {
	it := &models.StandardItinerary{
		TripMeta:          models.TripMeta{TripType: models.TripTypeZone},
		StoredCoordinates: models.StoredCoordinates{Center: &models.LatLong{Latitude: 10, Longitude: 20}},
	}

	query, source := ReconstructLocation(it)
	if source != SourceStoredCoordinates {
		t.Fatalf("source = %v; want stored-coordinates", source)
	}
	if query.Radius != defaultRadius {
		t.Errorf("Radius = %d; want default %d", query.Radius, defaultRadius)
	}
}

func TestReconstructLocationFromActivities(t *testing.T) {
	it := placeTrip()
	it.Days = []models.Day{{
		MorningActivities: []models.Activity{
			// Zero coordinates mean unknown and must be skipped.
			{ID: "a0", Place: models.PlaceInfo{Name: "Mystery", Location: &models.LatLong{}}},
			{ID: "a1", Place: models.PlaceInfo{ID: "louvre", Name: "Louvre", Location: &models.LatLong{Latitude: 48.86, Longitude: 2.33}}},
		},
	}}

	query, source := ReconstructLocation(it)
	if source != SourceActivities {
		t.Fatalf("source = %v; want activities", source)
	}
	if query.PlaceName != "Louvre" || query.PlaceID != "louvre" {
		t.Errorf("query = %+v; want the first located activity", query)
	}
}

func TestReconstructRoadFromActivitySynthesizesDestination(t *testing.T) {
	it := &models.RoadItinerary{
		TripMeta: models.TripMeta{TripType: models.TripTypeRoad},
		Stops: []models.Stop{
			{ID: "s1", Place: models.PlaceInfo{Name: "Start Town", Location: &models.LatLong{Latitude: 10, Longitude: 20}}},
		},
	}

	query, source := ReconstructLocation(it)
	if source != SourceActivities {
		t.Fatalf("source = %v; want activities", source)
	}
	if query.Origin == nil || query.Destination == nil {
		t.Fatal("road query missing origin or destination")
	}
	if query.Destination.Coordinates.Latitude != 10+syntheticPointDelta {
		t.Errorf("destination latitude = %v; want origin offset by %v", query.Destination.Coordinates.Latitude, syntheticPointDelta)
	}
}

func TestReconstructLocationDefault(t *testing.T) {
	query, source := ReconstructLocation(&models.StandardItinerary{
		TripMeta: models.TripMeta{TripType: models.TripTypePlace},
	})
	if source != SourceDefault {
		t.Fatalf("source = %v; want default", source)
	}
	if query.Coordinates.Latitude != defaultLatitude || query.Coordinates.Longitude != defaultLongitude {
		t.Errorf("query coordinates = %+v; want the fixed default", query.Coordinates)
	}
	if query.PlaceName != fallbackPlaceName {
		t.Errorf("PlaceName = %q; want %q", query.PlaceName, fallbackPlaceName)
	}
}

func TestReconstructRoadDefault(t *testing.T) {
	query, source := ReconstructLocation(&models.RoadItinerary{
		TripMeta: models.TripMeta{TripType: models.TripTypeRoad},
	})
	if source != SourceDefault {
		t.Fatalf("source = %v; want default", source)
	}
	if query.Origin.Coordinates.Latitude != defaultLatitude {
		t.Errorf("origin = %+v; want the fixed default", query.Origin.Coordinates)
	}
	if query.Destination.Coordinates.Latitude != defaultRoadEndLat {
		t.Errorf("destination = %+v; want the fixed road endpoint", query.Destination.Coordinates)
	}
}
