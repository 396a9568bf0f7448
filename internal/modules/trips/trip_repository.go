package trips

import (
	"context"
	"errors"
	"fmt"

	"voyage-trips/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RepositoryInterface defines the durable trip store contract: one document
// per trip identifier, itinerary fields flattened, no expiration.
type RepositoryInterface interface {
	// Upsert writes the itinerary under the trip identifier. When
	// participantID is non-empty it is added to the document's people set.
	Upsert(ctx context.Context, tripID string, it models.Itinerary, participantID string) error
	FindByID(ctx context.Context, tripID string) (models.Itinerary, error)
	Delete(ctx context.Context, tripID string) error
	ListByParticipant(ctx context.Context, userID string) ([]models.StoredTrip, error)
}

// Repository implements RepositoryInterface on a MongoDB collection.
type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) RepositoryInterface {
	return &Repository{collection: db.Collection("trips")}
}

// Upsert flattens the itinerary into the trip document keyed by its
// ObjectID. Participants accumulate via $addToSet so repeated saves stay
// idempotent.
func (r *Repository) Upsert(ctx context.Context, tripID string, it models.Itinerary, participantID string) error {
	oid, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: malformed trip identifier %q", models.ErrValidation, tripID)
	}

	raw, err := bson.Marshal(it)
	if err != nil {
		return fmt.Errorf("repository.Upsert: encode itinerary: %w", err)
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("repository.Upsert: decode itinerary document: %w", err)
	}

	update := bson.M{"$set": doc}
	if participantID != "" {
		update["$addToSet"] = bson.M{"people": participantID}
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("repository.Upsert: %w: %w", models.ErrPersistence, err)
	}
	return nil
}

// FindByID loads one trip and decodes it into its itinerary variant.
func (r *Repository) FindByID(ctx context.Context, tripID string) (models.Itinerary, error) {
	oid, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed trip identifier %q", models.ErrValidation, tripID)
	}

	var raw bson.Raw
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w: %w", models.ErrPersistence, err)
	}
	return decodeItineraryDocument(raw)
}

// Delete removes the trip document. Used both for explicit deletion and as
// the compensating action when participant association fails after a save.
func (r *Repository) Delete(ctx context.Context, tripID string) error {
	oid, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: malformed trip identifier %q", models.ErrValidation, tripID)
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("repository.Delete: %w: %w", models.ErrPersistence, err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListByParticipant returns every trip whose people set contains the user.
func (r *Repository) ListByParticipant(ctx context.Context, userID string) ([]models.StoredTrip, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"people": userID})
	if err != nil {
		return nil, fmt.Errorf("repository.ListByParticipant: %w: %w", models.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var result []models.StoredTrip
	for cursor.Next(ctx) {
		it, err := decodeItineraryDocument(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("repository.ListByParticipant: %w", err)
		}
		var id string
		if oid, ok := cursor.Current.Lookup("_id").ObjectIDOK(); ok {
			id = oid.Hex()
		}
		result = append(result, models.StoredTrip{TripID: id, Itinerary: it})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListByParticipant: %w: %w", models.ErrPersistence, err)
	}
	return result, nil
}

// decodeItineraryDocument picks the itinerary variant by the stored
// trip_type tag, defaulting untagged legacy documents to the standard
// variant.
func decodeItineraryDocument(raw bson.Raw) (models.Itinerary, error) {
	tripType, ok := raw.Lookup("trip_type").StringValueOK()
	if !ok || tripType == "" {
		tripType = models.TripTypePlace
	}

	if tripType == models.TripTypeRoad {
		var road models.RoadItinerary
		if err := bson.Unmarshal(raw, &road); err != nil {
			return nil, fmt.Errorf("decode road itinerary: %w", err)
		}
		road.TripType = tripType
		return &road, nil
	}

	var std models.StandardItinerary
	if err := bson.Unmarshal(raw, &std); err != nil {
		return nil, fmt.Errorf("decode standard itinerary: %w", err)
	}
	std.TripType = tripType
	return &std, nil
}
