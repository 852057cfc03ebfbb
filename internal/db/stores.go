package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/carwise/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrRecordNotFound  = errors.New("record not found")
)

// ServiceNotifyKind selects one of a vehicle's two service notified flags.
type ServiceNotifyKind string

const (
	NotifyDistance ServiceNotifyKind = "distance"
	NotifyDate     ServiceNotifyKind = "date"
)

// UserStore defines the interface for user records.
type UserStore interface {
	Ensure(ctx context.Context, user models.User) (*models.User, error)
	FindByChatID(ctx context.Context, chatID int64) (*models.User, error)
}

// VehicleStore defines the interface for vehicle records, including the
// scheduled-service baseline kept on each vehicle.
type VehicleStore interface {
	Insert(ctx context.Context, v models.Vehicle) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	FindActiveByOwner(ctx context.Context, ownerID int64) ([]models.Vehicle, error)
	FindAllActive(ctx context.Context) ([]models.Vehicle, error)
	UpdateOdometer(ctx context.Context, id primitive.ObjectID, odometer float64) error
	// ApplyServiceBaseline replaces the last-service baseline and clears
	// both service notified flags in a single update.
	ApplyServiceBaseline(ctx context.Context, id primitive.ObjectID, odometer *float64, date time.Time) error
	// SetServiceIntervals replaces the reminder intervals (nil disables a
	// kind) and clears both service notified flags in a single update.
	SetServiceIntervals(ctx context.Context, id primitive.ObjectID, km *float64, months *int) error
	SetServiceNotified(ctx context.Context, id primitive.ObjectID, kind ServiceNotifyKind) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// FuelStore defines the interface for refueling events.
type FuelStore interface {
	Insert(ctx context.Context, ev models.FuelEvent) error
	FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.FuelEvent, error)
}

// MaintenanceStore defines the interface for maintenance events.
type MaintenanceStore interface {
	Insert(ctx context.Context, ev models.MaintenanceEvent) error
	FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.MaintenanceEvent, error)
}

// InsuranceStore defines the interface for insurance policies.
type InsuranceStore interface {
	Insert(ctx context.Context, ins models.Insurance) error
	FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Insurance, error)
	SetNotified(ctx context.Context, id primitive.ObjectID, band models.NotifyBand) error
}

// PartStore defines the interface for recurring consumables.
type PartStore interface {
	// Upsert matches by (vehicle, name): an existing part gets its
	// last-values and intervals replaced and its notified flag cleared,
	// otherwise a new part is created.
	Upsert(ctx context.Context, part models.Part) error
	FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Part, error)
	SetNotified(ctx context.Context, id primitive.ObjectID) error
}

// Stores bundles every store for wiring.
type Stores struct {
	Users       UserStore
	Vehicles    VehicleStore
	Fuel        FuelStore
	Maintenance MaintenanceStore
	Insurance   InsuranceStore
	Parts       PartStore
}
