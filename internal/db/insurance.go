package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/carwise/internal/models"
)

// MongoInsuranceStore implements InsuranceStore for MongoDB.
type MongoInsuranceStore struct {
	Collection *mongo.Collection
}

// Insert inserts an insurance policy.
func (s *MongoInsuranceStore) Insert(ctx context.Context, ins models.Insurance) error {
	_, err := s.Collection.InsertOne(ctx, ins)
	return err
}

// FindByVehicle returns the vehicle's policies ordered by end date.
func (s *MongoInsuranceStore) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Insurance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "end_date", Value: 1}})
	cursor, err := s.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var policies []models.Insurance
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// SetNotified marks the notified flag of one warning band.
func (s *MongoInsuranceStore) SetNotified(ctx context.Context, id primitive.ObjectID, band models.NotifyBand) error {
	var field string
	switch band {
	case models.Band7d:
		field = "notified_7d"
	case models.Band3d:
		field = "notified_3d"
	default:
		field = "notified_expired"
	}
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
