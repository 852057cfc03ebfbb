package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/carwise/internal/models"
)

type fakeFuel struct{ events []models.FuelEvent }

func (f *fakeFuel) Insert(ctx context.Context, ev models.FuelEvent) error { return nil }
func (f *fakeFuel) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.FuelEvent, error) {
	return f.events, nil
}

type fakeMaint struct{ events []models.MaintenanceEvent }

func (f *fakeMaint) Insert(ctx context.Context, ev models.MaintenanceEvent) error { return nil }
func (f *fakeMaint) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.MaintenanceEvent, error) {
	return f.events, nil
}

type fakeIns struct{ policies []models.Insurance }

func (f *fakeIns) Insert(ctx context.Context, ins models.Insurance) error { return nil }
func (f *fakeIns) FindByVehicle(ctx context.Context, vehicleID primitive.ObjectID) ([]models.Insurance, error) {
	return f.policies, nil
}
func (f *fakeIns) SetNotified(ctx context.Context, id primitive.ObjectID, band models.NotifyBand) error {
	return nil
}

func ptrF(v float64) *float64 { return &v }

func TestConsumptionBetweenRefuelings(t *testing.T) {
	prev := models.FuelEvent{Liters: 40, Odometer: ptrF(10000)}
	curr := models.FuelEvent{Liters: 10, Odometer: ptrF(10500)}

	got, ok := Consumption(prev, curr)
	require.True(t, ok)
	assert.InDelta(t, 2.0, got, 0.001)
}

func TestConsumptionUndefined(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr models.FuelEvent
	}{
		{"missing previous odometer", models.FuelEvent{Liters: 40}, models.FuelEvent{Liters: 10, Odometer: ptrF(10500)}},
		{"missing current odometer", models.FuelEvent{Liters: 40, Odometer: ptrF(10000)}, models.FuelEvent{Liters: 10}},
		{"equal readings", models.FuelEvent{Odometer: ptrF(10000)}, models.FuelEvent{Liters: 10, Odometer: ptrF(10000)}},
		{"decreasing readings", models.FuelEvent{Odometer: ptrF(10500)}, models.FuelEvent{Liters: 10, Odometer: ptrF(10000)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Consumption(tt.prev, tt.curr)
			assert.False(t, ok)
		})
	}
}

func TestCollectTotals(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
	v := models.Vehicle{ID: primitive.NewObjectID(), Brand: "Kia", Model: "Rio", Odometer: 11000}

	fuel := &fakeFuel{events: []models.FuelEvent{
		{Liters: 40, Cost: 2000, Odometer: ptrF(10000), Date: day(1)},
		{Liters: 10, Cost: 550.5, Odometer: ptrF(10500), Date: day(10)},
		{Liters: 35, Cost: 1750, Date: day(20)}, // no odometer, excluded from consumption
	}}
	maint := &fakeMaint{events: []models.MaintenanceEvent{
		{Category: models.CategoryService, Cost: 8000, Date: day(5)},
	}}
	ins := &fakeIns{policies: []models.Insurance{
		{Cost: 12000, StartDate: day(2)},
	}}

	c := NewCollector(fuel, maint, ins)
	got, err := c.Collect(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, 3, got.FuelCount)
	assert.Equal(t, "85.00", got.Liters.StringFixed(2))
	assert.Equal(t, "4300.50", got.FuelCost.StringFixed(2))
	assert.Equal(t, "8000.00", got.MaintenanceCost.StringFixed(2))
	assert.Equal(t, "12000.00", got.InsuranceCost.StringFixed(2))
	assert.Equal(t, "24300.50", got.TotalCost().StringFixed(2))

	require.NotNil(t, got.AvgConsumption)
	assert.InDelta(t, 2.0, *got.AvgConsumption, 0.001)
	assert.InDelta(t, 500, got.DistanceTracked, 0.001)

	require.NotNil(t, got.FirstEvent)
	assert.Equal(t, day(1), *got.FirstEvent)
}

func TestReportMentionsTotals(t *testing.T) {
	v := models.Vehicle{Brand: "Kia", Model: "Rio", Odometer: 11000}
	s := &VehicleStats{Vehicle: v}
	report := s.Report()
	assert.Contains(t, report, "Kia Rio")
	assert.Contains(t, report, "Total spent: 0.00")
}
