package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FuelType is the primary fuel code of a vehicle or a single refueling.
type FuelType string

const (
	Fuel92       FuelType = "92"
	Fuel95       FuelType = "95"
	Fuel98       FuelType = "98"
	FuelDiesel   FuelType = "diesel"
	FuelGas      FuelType = "gas"
	FuelElectric FuelType = "electric"
)

// FuelTypes lists the selectable fuel codes in menu order.
var FuelTypes = []FuelType{Fuel92, Fuel95, Fuel98, FuelDiesel, FuelGas, FuelElectric}

// IsValidFuelType checks if a fuel code is one of the known types.
func IsValidFuelType(ft FuelType) bool {
	for _, known := range FuelTypes {
		if ft == known {
			return true
		}
	}
	return false
}

// Vehicle represents a user's car together with its scheduled-service
// baseline. The two notified flags are set by the reminder engine and
// cleared only when the baseline or intervals are replaced.
type Vehicle struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID  int64              `bson:"owner_id" json:"owner_id"`
	Brand    string             `bson:"brand" json:"brand"`
	Model    string             `bson:"model" json:"model"`
	Year     int                `bson:"year" json:"year"`
	Nickname string             `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Odometer float64            `bson:"odometer" json:"odometer"` // kilometers
	FuelType FuelType           `bson:"fuel_type" json:"fuel_type"`
	Active   bool               `bson:"active" json:"active"`

	LastServiceOdometer   *float64   `bson:"last_service_odometer,omitempty" json:"last_service_odometer,omitempty"`
	LastServiceDate       *time.Time `bson:"last_service_date,omitempty" json:"last_service_date,omitempty"`
	ServiceIntervalKm     *float64   `bson:"service_interval_km,omitempty" json:"service_interval_km,omitempty"`
	ServiceIntervalMonths *int       `bson:"service_interval_months,omitempty" json:"service_interval_months,omitempty"`

	NotifiedServiceDistance bool `bson:"notified_service_distance" json:"notified_service_distance"`
	NotifiedServiceDate     bool `bson:"notified_service_date" json:"notified_service_date"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Label returns a short display name, preferring the nickname.
func (v *Vehicle) Label() string {
	if v.Nickname != "" {
		return fmt.Sprintf("%s (%s %s)", v.Nickname, v.Brand, v.Model)
	}
	return fmt.Sprintf("%s %s", v.Brand, v.Model)
}
