package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// NewStores builds Mongo-backed stores over the named database.
func NewStores(database *mongo.Database) *Stores {
	return &Stores{
		Users:       &MongoUserStore{Collection: database.Collection("users")},
		Vehicles:    &MongoVehicleStore{Collection: database.Collection("vehicles")},
		Fuel:        &MongoFuelStore{Collection: database.Collection("fuel_events")},
		Maintenance: &MongoMaintenanceStore{Collection: database.Collection("maintenance_events")},
		Insurance:   &MongoInsuranceStore{Collection: database.Collection("insurances")},
		Parts:       &MongoPartStore{Collection: database.Collection("parts")},
	}
}
