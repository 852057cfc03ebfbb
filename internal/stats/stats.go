// Package stats aggregates per-vehicle spending and fuel figures. Money
// sums use decimal arithmetic so repeated additions of entered amounts
// stay exact.
package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/models"
)

// litersPerHundredKm converts a liters/distance ratio to the conventional
// l/100km figure.
const litersPerHundredKm = 100

// VehicleStats holds everything the stats report and the advice prompt
// need for one vehicle.
type VehicleStats struct {
	Vehicle models.Vehicle

	FuelCount int
	Liters    decimal.Decimal
	FuelCost  decimal.Decimal

	MaintenanceCount int
	MaintenanceCost  decimal.Decimal

	InsuranceCount int
	InsuranceCost  decimal.Decimal

	// AvgConsumption is l/100km over consecutive refuelings with
	// increasing odometer readings, nil when fewer than two qualify.
	AvgConsumption *float64
	// DistanceTracked is the odometer span covered by those refuelings.
	DistanceTracked float64

	FirstEvent *time.Time
}

// TotalCost sums fuel, maintenance and insurance spending.
func (s *VehicleStats) TotalCost() decimal.Decimal {
	return s.FuelCost.Add(s.MaintenanceCost).Add(s.InsuranceCost)
}

// Consumption returns the l/100km figure between two consecutive
// refuelings. It is defined only when both events carry an odometer and
// the later reading is strictly greater.
func Consumption(prev, curr models.FuelEvent) (float64, bool) {
	if prev.Odometer == nil || curr.Odometer == nil {
		return 0, false
	}
	distance := *curr.Odometer - *prev.Odometer
	if distance <= 0 {
		return 0, false
	}
	return curr.Liters / distance * litersPerHundredKm, true
}

// Collector reads event history and produces per-vehicle stats.
type Collector struct {
	fuel        db.FuelStore
	maintenance db.MaintenanceStore
	insurance   db.InsuranceStore
}

// NewCollector builds a stats collector over the event stores.
func NewCollector(fuel db.FuelStore, maintenance db.MaintenanceStore, insurance db.InsuranceStore) *Collector {
	return &Collector{fuel: fuel, maintenance: maintenance, insurance: insurance}
}

// Collect aggregates all recorded history for one vehicle.
func (c *Collector) Collect(ctx context.Context, v models.Vehicle) (*VehicleStats, error) {
	stats := &VehicleStats{Vehicle: v}

	fuel, err := c.fuel.FindByVehicle(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("fuel history read failed: %w", err)
	}
	stats.FuelCount = len(fuel)
	for _, ev := range fuel {
		stats.Liters = stats.Liters.Add(decimal.NewFromFloat(ev.Liters))
		stats.FuelCost = stats.FuelCost.Add(decimal.NewFromFloat(ev.Cost))
		noteFirst(stats, ev.Date)
	}
	applyConsumption(stats, fuel)

	maint, err := c.maintenance.FindByVehicle(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("maintenance history read failed: %w", err)
	}
	stats.MaintenanceCount = len(maint)
	for _, ev := range maint {
		stats.MaintenanceCost = stats.MaintenanceCost.Add(decimal.NewFromFloat(ev.Cost))
		noteFirst(stats, ev.Date)
	}

	policies, err := c.insurance.FindByVehicle(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("insurance history read failed: %w", err)
	}
	stats.InsuranceCount = len(policies)
	for _, pol := range policies {
		stats.InsuranceCost = stats.InsuranceCost.Add(decimal.NewFromFloat(pol.Cost))
		noteFirst(stats, pol.StartDate)
	}

	return stats, nil
}

// applyConsumption averages consumption over every consecutive pair of
// refuelings with increasing odometer readings. Events arrive sorted by
// date ascending.
func applyConsumption(stats *VehicleStats, fuel []models.FuelEvent) {
	var liters, distance float64
	for i := 1; i < len(fuel); i++ {
		prev, curr := fuel[i-1], fuel[i]
		if prev.Odometer == nil || curr.Odometer == nil {
			continue
		}
		span := *curr.Odometer - *prev.Odometer
		if span <= 0 {
			continue
		}
		liters += curr.Liters
		distance += span
	}
	if distance > 0 {
		avg := liters / distance * litersPerHundredKm
		stats.AvgConsumption = &avg
		stats.DistanceTracked = distance
	}
}

func noteFirst(stats *VehicleStats, t time.Time) {
	if t.IsZero() {
		return
	}
	if stats.FirstEvent == nil || t.Before(*stats.FirstEvent) {
		first := t
		stats.FirstEvent = &first
	}
}

// Report renders the stats as a chat message.
func (s *VehicleStats) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for %s\n", s.Vehicle.Label())
	fmt.Fprintf(&b, "Odometer: %.0f km\n", s.Vehicle.Odometer)
	if s.FirstEvent != nil {
		fmt.Fprintf(&b, "Tracked since: %s\n", s.FirstEvent.Format("02.01.2006"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Refuelings: %d\n", s.FuelCount)
	if s.FuelCount > 0 {
		fmt.Fprintf(&b, "Fuel: %s l for %s\n", s.Liters.StringFixed(2), s.FuelCost.StringFixed(2))
	}
	if s.AvgConsumption != nil {
		fmt.Fprintf(&b, "Average consumption: %.1f l/100km over %.0f km\n", *s.AvgConsumption, s.DistanceTracked)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Maintenance records: %d", s.MaintenanceCount)
	if s.MaintenanceCount > 0 {
		fmt.Fprintf(&b, " for %s", s.MaintenanceCost.StringFixed(2))
	}
	b.WriteString("\n")
	if s.InsuranceCount > 0 {
		fmt.Fprintf(&b, "Insurance policies: %d for %s\n", s.InsuranceCount, s.InsuranceCost.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal spent: %s", s.TotalCost().StringFixed(2))
	return b.String()
}

// PromptContext renders the stats as plain facts for the advice model.
func (s *VehicleStats) PromptContext(labels func(models.FuelType) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vehicle: %s %s %d, fuel type %s, odometer %.0f km.\n",
		s.Vehicle.Brand, s.Vehicle.Model, s.Vehicle.Year, labels(s.Vehicle.FuelType), s.Vehicle.Odometer)
	fmt.Fprintf(&b, "Refuelings recorded: %d, total %s liters costing %s.\n",
		s.FuelCount, s.Liters.StringFixed(1), s.FuelCost.StringFixed(2))
	if s.AvgConsumption != nil {
		fmt.Fprintf(&b, "Average consumption: %.1f l/100km over %.0f km.\n", *s.AvgConsumption, s.DistanceTracked)
	}
	fmt.Fprintf(&b, "Maintenance records: %d costing %s.\n", s.MaintenanceCount, s.MaintenanceCost.StringFixed(2))
	fmt.Fprintf(&b, "Total spending on record: %s.", s.TotalCost().StringFixed(2))
	return b.String()
}
