package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotifyBand is one of the insurance expiry warning bands.
type NotifyBand string

const (
	Band7d      NotifyBand = "7d"
	Band3d      NotifyBand = "3d"
	BandExpired NotifyBand = "expired"
)

// Insurance represents a policy attached to a vehicle. Each warning band
// carries its own notified flag so a policy warns once at seven days, once
// at three days and once on expiry.
type Insurance struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID    primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	PolicyNumber string             `bson:"policy_number,omitempty" json:"policy_number,omitempty"`
	Company      string             `bson:"company,omitempty" json:"company,omitempty"`
	StartDate    time.Time          `bson:"start_date" json:"start_date"`
	EndDate      time.Time          `bson:"end_date" json:"end_date"`
	Cost         float64            `bson:"cost" json:"cost"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`

	Notified7d      bool `bson:"notified_7d" json:"notified_7d"`
	Notified3d      bool `bson:"notified_3d" json:"notified_3d"`
	NotifiedExpired bool `bson:"notified_expired" json:"notified_expired"`
}

// DaysLeft returns whole days from now until the policy end date,
// negative once expired.
func (i *Insurance) DaysLeft(now time.Time) int {
	end := time.Date(i.EndDate.Year(), i.EndDate.Month(), i.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(today).Hours() / 24)
}
