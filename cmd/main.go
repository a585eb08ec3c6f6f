package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/citydev/fleetcheck/internal/auth"
	"github.com/citydev/fleetcheck/internal/db"
	"github.com/citydev/fleetcheck/internal/draft"
	"github.com/citydev/fleetcheck/internal/handlers"
	"github.com/citydev/fleetcheck/internal/middleware"
	"github.com/citydev/fleetcheck/internal/notify"
	"github.com/citydev/fleetcheck/internal/refdata"
	"github.com/citydev/fleetcheck/internal/wizard"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}
	log.SetFormatter(&log.JSONFormatter{})

	// Remote record service
	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	database := client.Database(envOr("MONGO_DB", "fleetcheck"))
	records := db.NewMongoRecordService(database)
	log.Info("Connected to MongoDB")

	// Local draft store
	store, err := draft.OpenSQLite(envOr("DRAFT_DB_PATH", "fleetcheck-drafts.db"))
	if err != nil {
		log.WithError(err).Fatal("Failed to open draft store")
	}
	defer store.Close()
	drafts := draft.NewRecords(store)

	// Wizard sessions
	sessions := wizard.NewManager(wizard.Config{
		Records:       records,
		Drafts:        drafts,
		IncludeReview: os.Getenv("INCLUDE_REVIEW_STEP") == "true",
	})

	// Notification channels
	feed, err := notify.NewFeedPublisher(os.Getenv("MQTT_BROKER_URL"), os.Getenv("MQTT_TOPIC"), nil)
	if err != nil {
		log.WithError(err).Warn("Fleet event feed unavailable, continuing without it")
	}
	defer feed.Close()

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}

	inspections := handlers.NewInspectionHandler(
		sessions,
		drafts,
		notify.NewEmailNotifier(os.Getenv("MAIL_FUNCTION_URL"), nil),
		notify.NewSlackNotifier(nil),
		notify.NewSheetsNotifier(nil),
		feed,
		nil,
	)
	recordsHandler := handlers.NewRecordsHandler(records, refdata.NewCache(records, drafts, nil), drafts, nil)
	authHandler := handlers.NewAuthHandler(authService, users)

	router := handlers.NewRouter(inspections, recordsHandler, authHandler,
		middleware.NewAuthMiddleware(authService), middleware.NewRateLimitMiddleware())

	port := envOr("PORT", "8080")
	log.WithField("port", port).Info("FleetCheck server listening")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
