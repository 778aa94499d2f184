package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxConnectAttempts = 5

// ConnectDB connects to MongoDB with a bounded retry loop: up to five
// attempts with a linearly increasing delay. When every attempt fails the
// client is still returned so the process keeps serving; store operations
// will fail per-request until the database comes back.
func ConnectDB() (*mongo.Client, error) {
	mongoURI := os.Getenv("MONGOURI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGOURI not set in environment")
	}

	clientOptions := options.Client().ApplyURI(mongoURI)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	var pingErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pingErr = client.Ping(ctx, nil)
		cancel()

		if pingErr == nil {
			log.Println("Connected to MongoDB")
			return client, nil
		}

		log.Printf("MongoDB connection attempt %d failed: %v", attempt, pingErr)
		if attempt < maxConnectAttempts {
			delay := time.Duration(attempt) * 2 * time.Second
			log.Printf("Retrying in %s...", delay)
			time.Sleep(delay)
		}
	}

	return client, fmt.Errorf("MongoDB ping failed after %d attempts: %v", maxConnectAttempts, pingErr)
}

// Database returns the application database handle.
func Database(client *mongo.Client) *mongo.Database {
	return client.Database(os.Getenv("DB"))
}
