package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/carwise/internal/models"
)

// MongoVehicleStore implements VehicleStore for MongoDB.
type MongoVehicleStore struct {
	Collection *mongo.Collection
}

// Insert inserts a vehicle record and returns its id.
func (s *MongoVehicleStore) Insert(ctx context.Context, v models.Vehicle) (primitive.ObjectID, error) {
	v.Active = true
	v.CreatedAt = time.Now()
	res, err := s.Collection.InsertOne(ctx, v)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindByID finds a vehicle by its id.
func (s *MongoVehicleStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// FindActiveByOwner finds the owner's active vehicles.
func (s *MongoVehicleStore) FindActiveByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"owner_id": ownerID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindAllActive finds every active vehicle, for the reminder scan.
func (s *MongoVehicleStore) FindAllActive(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := s.Collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// UpdateOdometer replaces the vehicle's current odometer value.
func (s *MongoVehicleStore) UpdateOdometer(ctx context.Context, id primitive.ObjectID, odometer float64) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"odometer": odometer}})
}

// ApplyServiceBaseline replaces the last-service baseline and clears both
// service notified flags as one update document.
func (s *MongoVehicleStore) ApplyServiceBaseline(ctx context.Context, id primitive.ObjectID, odometer *float64, date time.Time) error {
	set := bson.M{
		"last_service_date":         date,
		"notified_service_distance": false,
		"notified_service_date":     false,
	}
	if odometer != nil {
		set["last_service_odometer"] = *odometer
	}
	return s.updateOne(ctx, id, bson.M{"$set": set})
}

// SetServiceIntervals replaces the reminder intervals and clears both
// service notified flags. A nil interval disables that reminder kind.
func (s *MongoVehicleStore) SetServiceIntervals(ctx context.Context, id primitive.ObjectID, km *float64, months *int) error {
	set := bson.M{
		"notified_service_distance": false,
		"notified_service_date":     false,
	}
	unset := bson.M{}
	if km != nil {
		set["service_interval_km"] = *km
	} else {
		unset["service_interval_km"] = ""
	}
	if months != nil {
		set["service_interval_months"] = *months
	} else {
		unset["service_interval_months"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.updateOne(ctx, id, update)
}

// SetServiceNotified marks one of the two service notified flags.
func (s *MongoVehicleStore) SetServiceNotified(ctx context.Context, id primitive.ObjectID, kind ServiceNotifyKind) error {
	field := "notified_service_distance"
	if kind == NotifyDate {
		field = "notified_service_date"
	}
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{field: true}})
}

// Deactivate soft-deletes the vehicle, keeping its history readable.
func (s *MongoVehicleStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return s.updateOne(ctx, id, bson.M{"$set": bson.M{"active": false}})
}

func (s *MongoVehicleStore) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVehicleNotFound
	}
	return nil
}
