package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voyage-trips/internal/config"
	"voyage-trips/internal/modules/trips"
	"voyage-trips/pkg/recommend"
	"voyage-trips/pkg/usermgmt"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// requestValidator adapts go-playground/validator to echo's Validator.
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("connecting to mongo: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("pinging mongo: %v", err)
	}

	db := mongoClient.Database(cfg.MongoDatabase)
	repo := trips.NewRepository(db)
	drafts := trips.NewMemoryDraftStore(cfg.DraftTTL())
	recommendClient := recommend.NewClient(cfg.RecommendationURL)
	userClient := usermgmt.NewClient(cfg.UserManagementURL)

	svc := trips.NewService(repo, drafts, recommendClient, userClient, cfg.DraftTTL())
	handler := trips.NewHandler(svc, cfg.JWTSecret, cfg.ClientOrigin)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{v: validator.New()}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowCredentials: true,
	}))

	requireAuth := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "cookie:voyage_at",
	})
	handler.RegisterRoutes(e.Group("/api"), e.Group("/ws"), requireAuth)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutting down server: %v", err)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Printf("disconnecting mongo: %v", err)
	}
}
