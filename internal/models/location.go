package models

import "fmt"

// RoutePoint is one end of a road query: a coordinate with an optional place
// reference. The intake and reconstruction paths share this one shape.
type RoutePoint struct {
	Coordinates LatLong `json:"coordinates" bson:"coordinates"`
	PlaceName   string  `json:"place_name" bson:"place_name"`
	PlaceID     string  `json:"place_id,omitempty" bson:"place_id,omitempty"`
}

// PlaceSelection is a caller-chosen place, used for the place query payload
// and for must-visit lists.
type PlaceSelection struct {
	Coordinates LatLong `json:"coordinates" bson:"coordinates"`
	PlaceName   string  `json:"place_name" bson:"place_name"`
	PlaceID     string  `json:"place_id,omitempty" bson:"place_id,omitempty"`
}

// LocationQuery is the structured place/zone/road payload sent to the
// recommendation service, and the original-query snapshot stored on created
// itineraries. Type discriminates which field group is meaningful:
//
//	zone:  Center, Radius
//	place: Coordinates, PlaceName, PlaceID
//	road:  Origin, Destination, Polylines
type LocationQuery struct {
	Type string `json:"type" bson:"type" validate:"required,oneof=place road zone"`

	Center *LatLong `json:"center,omitempty" bson:"center,omitempty"`
	Radius int      `json:"radius,omitempty" bson:"radius,omitempty"`

	Coordinates *LatLong `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	PlaceName   string   `json:"place_name,omitempty" bson:"place_name,omitempty"`
	PlaceID     string   `json:"place_id,omitempty" bson:"place_id,omitempty"`

	Origin      *RoutePoint `json:"origin,omitempty" bson:"origin,omitempty"`
	Destination *RoutePoint `json:"destination,omitempty" bson:"destination,omitempty"`
	Polylines   string      `json:"polylines,omitempty" bson:"polylines,omitempty"`
}

// Validate checks that the discriminator matches a populated field group.
func (q *LocationQuery) Validate() error {
	switch q.Type {
	case TripTypeZone:
		if q.Center == nil {
			return fmt.Errorf("%w: zone query requires a center", ErrValidation)
		}
	case TripTypePlace:
		if q.Coordinates == nil {
			return fmt.Errorf("%w: place query requires coordinates", ErrValidation)
		}
	case TripTypeRoad:
		if q.Origin == nil || q.Destination == nil {
			return fmt.Errorf("%w: road query requires origin and destination", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown location query type %q", ErrValidation, q.Type)
	}
	return nil
}

// ExtractCoordinates returns the per-category coordinate fields recorded on
// a freshly created itinerary so later regenerations survive snapshot loss.
func (q *LocationQuery) ExtractCoordinates() StoredCoordinates {
	var sc StoredCoordinates
	switch q.Type {
	case TripTypeZone:
		if q.Center != nil {
			center := *q.Center
			sc.Center = &center
			sc.Radius = q.Radius
		}
	case TripTypePlace:
		if q.Coordinates != nil {
			place := *q.Coordinates
			sc.Place = &place
		}
	case TripTypeRoad:
		if q.Origin != nil {
			origin := q.Origin.Coordinates
			sc.Origin = &origin
		}
		if q.Destination != nil {
			dest := q.Destination.Coordinates
			sc.Destination = &dest
		}
	}
	return sc
}
