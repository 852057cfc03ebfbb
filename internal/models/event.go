package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceCategory classifies a maintenance event. CategoryService is
// the scheduled-service category: committing an event with it replaces the
// owning vehicle's service baseline.
type MaintenanceCategory string

const (
	CategoryService MaintenanceCategory = "service"
	CategoryRepair  MaintenanceCategory = "repair"
	CategoryTires   MaintenanceCategory = "tires"
	CategoryWash    MaintenanceCategory = "wash"
	CategoryOther   MaintenanceCategory = "other"
)

// MaintenanceCategories lists the selectable categories in menu order.
var MaintenanceCategories = []MaintenanceCategory{
	CategoryService, CategoryRepair, CategoryTires, CategoryWash, CategoryOther,
}

// FuelEvent represents a single refueling.
type FuelEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	Liters    float64            `bson:"liters" json:"liters"`
	Cost      float64            `bson:"cost" json:"cost"`
	Odometer  *float64           `bson:"odometer,omitempty" json:"odometer,omitempty"`
	FuelType  FuelType           `bson:"fuel_type,omitempty" json:"fuel_type,omitempty"`
	Date      time.Time          `bson:"date" json:"date"`
}

// MaintenanceEvent represents a service, repair or other dated expense.
type MaintenanceEvent struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VehicleID   primitive.ObjectID  `bson:"vehicle_id" json:"vehicle_id"`
	Category    MaintenanceCategory `bson:"category" json:"category"`
	Description string              `bson:"description" json:"description"`
	Cost        float64             `bson:"cost" json:"cost"`
	Odometer    *float64            `bson:"odometer,omitempty" json:"odometer,omitempty"`
	Date        time.Time           `bson:"date" json:"date"`
}
