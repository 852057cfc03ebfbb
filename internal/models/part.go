package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Part is a recurring consumable (oil, filters, timing belt) with its own
// replacement cadence. A part is due when either the distance or the date
// interval has been crossed since the last replacement.
type Part struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID      primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	Name           string             `bson:"name" json:"name"`
	LastOdometer   *float64           `bson:"last_odometer,omitempty" json:"last_odometer,omitempty"`
	LastDate       *time.Time         `bson:"last_date,omitempty" json:"last_date,omitempty"`
	IntervalKm     *float64           `bson:"interval_km,omitempty" json:"interval_km,omitempty"`
	IntervalMonths *int               `bson:"interval_months,omitempty" json:"interval_months,omitempty"`
	Notified       bool               `bson:"notified" json:"notified"`
}
