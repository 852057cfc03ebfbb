package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/carwise/internal/models"
)

// MongoFuelStore implements FuelStore for MongoDB.
type MongoFuelStore struct {
	Collection *mongo.Collection
}

// Insert inserts a refueling event.
func (s *MongoFuelStore) Insert(ctx context.Context, ev models.FuelEvent) error {
	if ev.Date.IsZero() {
		ev.Date = time.Now()
	}
	_, err := s.Collection.InsertOne(ctx, ev)
	return err
}

// FindByVehicle returns the vehicle's refuelings in chronological order.
func (s *MongoFuelStore) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.FuelEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var events []models.FuelEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// MongoMaintenanceStore implements MaintenanceStore for MongoDB.
type MongoMaintenanceStore struct {
	Collection *mongo.Collection
}

// Insert inserts a maintenance event.
func (s *MongoMaintenanceStore) Insert(ctx context.Context, ev models.MaintenanceEvent) error {
	if ev.Date.IsZero() {
		ev.Date = time.Now()
	}
	_, err := s.Collection.InsertOne(ctx, ev)
	return err
}

// FindByVehicle returns the vehicle's maintenance events in chronological order.
func (s *MongoMaintenanceStore) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.MaintenanceEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var events []models.MaintenanceEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
