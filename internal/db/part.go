package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/carwise/internal/models"
)

// MongoPartStore implements PartStore for MongoDB.
type MongoPartStore struct {
	Collection *mongo.Collection
}

// Upsert matches by (vehicle, name), replacing last-values and intervals
// and clearing the notified flag; an unmatched part is created.
func (s *MongoPartStore) Upsert(ctx context.Context, part models.Part) error {
	filter := bson.M{"vehicle_id": part.VehicleID, "name": part.Name}
	set := bson.M{"notified": false}
	unset := bson.M{}
	if part.LastOdometer != nil {
		set["last_odometer"] = *part.LastOdometer
	}
	if part.LastDate != nil {
		set["last_date"] = *part.LastDate
	}
	if part.IntervalKm != nil {
		set["interval_km"] = *part.IntervalKm
	} else {
		unset["interval_km"] = ""
	}
	if part.IntervalMonths != nil {
		set["interval_months"] = *part.IntervalMonths
	} else {
		unset["interval_months"] = ""
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"vehicle_id": part.VehicleID, "name": part.Name},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := s.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FindByVehicle returns the vehicle's recurring parts.
func (s *MongoPartStore) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Part, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var parts []models.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// SetNotified marks the part's single notified flag.
func (s *MongoPartStore) SetNotified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notified": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
