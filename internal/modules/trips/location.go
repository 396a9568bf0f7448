package trips

import "voyage-trips/internal/models"

// LocationSource identifies which reconstruction tier produced a query.
type LocationSource int

const (
	// SourceSnapshot: the stored original-query snapshot was used verbatim.
	SourceSnapshot LocationSource = iota
	// SourceStoredCoordinates: rebuilt from the per-category coordinate
	// fields recorded at creation time.
	SourceStoredCoordinates
	// SourceActivities: synthesized from the first activity carrying a
	// usable location.
	SourceActivities
	// SourceDefault: irrecoverable location data; the fixed default
	// coordinate was used. Callers must flag this in logs.
	SourceDefault
)

func (s LocationSource) String() string {
	switch s {
	case SourceSnapshot:
		return "snapshot"
	case SourceStoredCoordinates:
		return "stored-coordinates"
	case SourceActivities:
		return "activities"
	default:
		return "default"
	}
}

// Reconstruction constants. The default coordinate marks trips whose
// location data is gone entirely; the road delta offsets a synthesized
// destination when only one point is known.
const (
	defaultRadius        = 50
	defaultLatitude      = 40.7128
	defaultLongitude     = -74.0060
	defaultRoadEndLat    = 40.7589
	defaultRoadEndLong   = -73.9851
	syntheticPointDelta  = 0.1
	fallbackPlaceName    = "Unknown Place"
	fallbackOriginName   = "Start Point"
	fallbackEndpointName = "End Point"
)

// ReconstructLocation rebuilds the structured query payload needed to
// re-invoke the recommendation service for an existing itinerary. The
// fallback order is fixed: stored snapshot, then recorded coordinate
// fields, then the first located activity, then the fixed default.
func ReconstructLocation(it models.Itinerary) (models.LocationQuery, LocationSource) {
	if snapshot := it.Snapshot(); snapshot != nil {
		return *snapshot, SourceSnapshot
	}

	meta := it.Meta()
	coords := it.Coordinates()

	if query, ok := queryFromStoredCoordinates(meta, coords); ok {
		return query, SourceStoredCoordinates
	}

	if loc := it.FirstActivityLocation(); loc != nil {
		return queryFromActivity(meta, loc), SourceActivities
	}

	return defaultQuery(meta), SourceDefault
}

func queryFromStoredCoordinates(meta models.TripMeta, coords models.StoredCoordinates) (models.LocationQuery, bool) {
	switch meta.TripType {
	case models.TripTypeZone:
		if coords.Center == nil {
			return models.LocationQuery{}, false
		}
		radius := coords.Radius
		if radius == 0 {
			radius = defaultRadius
		}
		center := *coords.Center
		return models.LocationQuery{Type: models.TripTypeZone, Center: &center, Radius: radius}, true

	case models.TripTypeRoad:
		if coords.Origin == nil || coords.Destination == nil {
			return models.LocationQuery{}, false
		}
		return models.LocationQuery{
			Type:        models.TripTypeRoad,
			Origin:      &models.RoutePoint{Coordinates: *coords.Origin, PlaceName: "Origin"},
			Destination: &models.RoutePoint{Coordinates: *coords.Destination, PlaceName: "Destination"},
		}, true

	default: // place
		if coords.Place == nil {
			return models.LocationQuery{}, false
		}
		place := *coords.Place
		return models.LocationQuery{
			Type:        models.TripTypePlace,
			Coordinates: &place,
			PlaceName:   regionName(meta),
		}, true
	}
}

func queryFromActivity(meta models.TripMeta, loc *models.ActivityLocation) models.LocationQuery {
	switch meta.TripType {
	case models.TripTypeZone:
		center := loc.Coordinates
		return models.LocationQuery{Type: models.TripTypeZone, Center: &center, Radius: defaultRadius}

	case models.TripTypeRoad:
		origin := loc.Coordinates
		destination := models.LatLong{
			Latitude:  origin.Latitude + syntheticPointDelta,
			Longitude: origin.Longitude + syntheticPointDelta,
		}
		return models.LocationQuery{
			Type:        models.TripTypeRoad,
			Origin:      &models.RoutePoint{Coordinates: origin, PlaceName: loc.PlaceName, PlaceID: loc.PlaceID},
			Destination: &models.RoutePoint{Coordinates: destination, PlaceName: fallbackEndpointName},
		}

	default:
		coordinates := loc.Coordinates
		return models.LocationQuery{
			Type:        models.TripTypePlace,
			Coordinates: &coordinates,
			PlaceName:   loc.PlaceName,
			PlaceID:     loc.PlaceID,
		}
	}
}

func defaultQuery(meta models.TripMeta) models.LocationQuery {
	fallback := models.LatLong{Latitude: defaultLatitude, Longitude: defaultLongitude}
	switch meta.TripType {
	case models.TripTypeZone:
		return models.LocationQuery{Type: models.TripTypeZone, Center: &fallback, Radius: defaultRadius}

	case models.TripTypeRoad:
		end := models.LatLong{Latitude: defaultRoadEndLat, Longitude: defaultRoadEndLong}
		return models.LocationQuery{
			Type:        models.TripTypeRoad,
			Origin:      &models.RoutePoint{Coordinates: fallback, PlaceName: fallbackOriginName},
			Destination: &models.RoutePoint{Coordinates: end, PlaceName: fallbackEndpointName},
		}

	default:
		return models.LocationQuery{
			Type:        models.TripTypePlace,
			Coordinates: &fallback,
			PlaceName:   regionName(meta),
		}
	}
}

// regionName names a synthesized place query from whatever regional
// metadata survived.
func regionName(meta models.TripMeta) string {
	if meta.City != "" {
		return meta.City
	}
	if meta.Country != "" {
		return meta.Country
	}
	return fallbackPlaceName
}
