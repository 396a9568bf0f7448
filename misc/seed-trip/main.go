package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"voyage-trips/internal/config"
	"voyage-trips/internal/models"
	"voyage-trips/internal/modules/trips"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Inserts one sample trip into the durable store so a fresh environment has
// something to fetch. Optionally takes a user id to record as participant.
func main() {
	var userID string
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := trips.NewRepository(client.Database(cfg.MongoDatabase))

	tripID := primitive.NewObjectID().Hex()
	center := models.LatLong{Latitude: 48.8566, Longitude: 2.3522}
	it := &models.StandardItinerary{
		Name:      "Sample Paris Trip",
		StartDate: "2026-06-01T00:00:00Z",
		EndDate:   "2026-06-04T00:00:00Z",
		Budget:    1500,
		Days: []models.Day{
			{
				Date: "2026-06-01",
				MorningActivities: []models.Activity{
					{
						ID:           "seed-a1",
						Place:        models.PlaceInfo{ID: "louvre", Name: "Louvre Museum", Location: &center},
						StartTime:    "09:00",
						EndTime:      "12:00",
						ActivityType: "museum",
						Duration:     180,
					},
				},
			},
		},
		TripMeta: models.TripMeta{TripType: models.TripTypePlace, Country: "France", City: "Paris"},
		OriginalPlaceData: &models.LocationQuery{
			Type:        models.TripTypePlace,
			Coordinates: &center,
			PlaceName:   "Paris",
		},
		StoredCoordinates: models.StoredCoordinates{Place: &center},
	}

	if err := repo.Upsert(ctx, tripID, it, userID); err != nil {
		log.Fatalf("Failed to insert sample trip: %v", err)
	}

	fmt.Println(tripID)
}
